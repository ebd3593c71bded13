// Package episode holds the fixed "music for programming" episode table and
// resolves episode numbers to their download URLs.
//
// The table is ordered: index N (1-based) is the slug at position N-1. Some
// episodes share a slug; that is part of the data and must not be deduplicated.
package episode
