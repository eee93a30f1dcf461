// Package series turns raw index publications into ordered tables.
//
// Two source layouts are supported:
//   - year-per-row HTML tables, one cell per month plus a leading year cell, where the
//     newest reference period is the last populated month of the most recent year;
//   - SIDRA statistical cubes, a flat list of (period code, measure, value) observations
//     pivoted into one row per month.
//
// Both produce a Table whose header uses canonical column names and whose values are
// fixed two-decimal strings, with "" marking an explicit gap in the publication.
package series
