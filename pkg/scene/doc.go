// Package scene defines the scene graph produced by script evaluation.
// A scene is a DAG of primitives, explicit meshes, transforms, CSG
// operations and groups. Each evaluation builds a new Graph; tessellation
// and validation only read it.
package scene
