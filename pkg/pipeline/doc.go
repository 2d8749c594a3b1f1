// Package pipeline assembles job pipelines for the event-processing framework.
//
// A pipeline is an ordered list of stage descriptors (generators, converters, filters, writers...), an ordered
// list of services and a few run parameters. A descriptor is built against the Schema of its component type,
// so an unknown property or a value of the wrong type is rejected when it is set rather than when the
// framework reads the job. Stages exchange data through named paths: Link binds the writer handle of one
// descriptor and the reader handle of another to the same path.
//
// The order in which stages and services are appended is the order in which the framework runs them. The
// pipeline does not reorder anything; Validate only reports paths that are read before they are written,
// paths nobody writes and services registered before a service they require. Those reports become errors
// when the pipeline is created with WithStrictDataFlow.
//
// Assembly follows an accumulate then finalize lifecycle: AddStage and AddService may be called until
// Finalize succeeds, after which the pipeline is read-only and can be rendered.
package pipeline
