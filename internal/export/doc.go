// Package export drives a complete export run: for each configured report
// type it fetches, flattens, and serializes, then uploads the resulting
// files and sweeps expired local exports. Report types are processed
// strictly one after another; the reporting API and the drive upload are
// rate limited and per-run data volume is small, so parallelism buys
// nothing here.
package export
