// Package playbook loads reference documents and splits them into chunks.
//
// A [Document] is an ordered list of paragraphs read from a .docx file, a
// plain-text file, or an s3:// object. [Split] cuts document text into
// [Chunk]s at literal separator markers (e.g. "Section:"), keeping each
// marker at the head of its chunk so that the chunks concatenate back to the
// original text.
package playbook
