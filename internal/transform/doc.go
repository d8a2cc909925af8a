// Package transform defines the step contract shared by every pipeline stage:
// the Step interface, the name→constructor Registry that configuration is
// resolved against, parameter decoding for step constructors, and the error
// taxonomy surfaced by building and running pipelines. Remote steps reach
// out-of-process plugins through a transform.Client.
package transform
