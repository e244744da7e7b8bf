// Package catalog implements the ranked-list workflows on top of the store
// and the metadata gateway.
//
//   - Ranking: every listing recomputes and persists ranking for all records
//   - Selection: search the gateway, then fetch the picked candidate and
//     insert it unless its title is already stored
//   - Edit/Delete: mutate or remove one record found by exact title
//
// Each workflow call acquires its own store session and releases it before
// returning. Gateway calls happen outside the session so a slow upstream
// never holds the store connection.
package catalog
