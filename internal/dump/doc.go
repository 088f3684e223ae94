/*
Package dump persists snapshots of the Splitter contract storage.

A snapshot consists of two files named after its ID: the JSON-encoded contract
state and a CSV of storage items. Items are written in a human-readable form:
balances are keyed by account address, roles are rendered as addresses and
the lifecycle state as a number. Keys the package does not recognize are
kept base64-encoded.
*/
package dump
