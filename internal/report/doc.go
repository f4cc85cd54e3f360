// Package report defines the domain types shared by the export pipeline:
// raw records as returned by the Graph reporting API, the report type tags
// that select a flattening rule, flat rows ready for CSV serialization, and
// descriptors for completed export files.
package report
