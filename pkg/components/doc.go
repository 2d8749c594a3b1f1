// Package components declares the component types a job can use.
//
// Each type is a plain struct whose fields are the only options the component recognises. A zero field means
// the framework default; slices distinguish nil (default) from empty (explicitly empty), and booleans whose
// default is true are pointers. Build turns the struct into a pipeline.Descriptor checked against the schema
// of the type. Data handle paths are not part of the structs: bind them with Descriptor.SetPath or
// pipeline.Link once the descriptor is built.
package components
