// Package review runs contract sections through a text-generation model
// against playbook context and turns the replies into ranked findings.
//
// Templates (prompt.go) carry the instruction text sent to the model and the
// [OutputFormat] its reply must follow. The field labels "Issue:",
// "Reason:", and "Score:" are a contract between the two: a template pack
// (templates.go) that changes a template's reply format must supply a
// matching pattern.
//
// Three strategies are available:
//
//   - single-shot sends every playbook chunk as context in one call;
//   - map-rerank asks once per chunk, drops replies that do not parse, and
//     ranks the rest by score, filtering score 0;
//   - map-reduce asks once per chunk without a score, then merges the
//     non-trivial answers with a second, free-text call.
//
// A [Session] reviews a whole document turn by turn against a searchable
// store and parses every finding from the final end-of-file reply.
//
// Failures are typed: [ParseError], [ExternalCallError], and [InputError].
// [Kind] classifies an error for presentation.
package review
