/*
Package session hosts playthroughs.

A Game bundles the per-playthrough objects (answers, coordinator, activation daemon and world)
and the Manager serializes access to many of them, one lock per session id.
*/
package session
