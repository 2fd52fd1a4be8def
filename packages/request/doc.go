// Package request holds the per-invocation request configuration and
// the logic that turns it into a dispatchable request shape.
//
// A Config is built once from CLI flags, validated, and then reduced to
// one of three shapes:
//   - NoBody: request without a payload
//   - RawPayload: body file sent as-is, optionally with a Content-Type
//   - MultipartForm: one or more named form parts
//
// Shape selection and URL derivation are pure functions of the Config;
// nothing in this package touches the network.
package request
