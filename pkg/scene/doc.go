// Package scene defines the named volume registry produced by evaluating
// a scene script. A Scene is built once per evaluation and is not mutated
// after it is returned.
package scene
