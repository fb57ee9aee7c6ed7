/*
Package answers implements the answer store: the key/value record of player choices.

Writes go through SetAndNotify, which runs key listeners and then wildcard listeners
synchronously before returning, so dependency re-evaluation always observes the write.
An optional ports.AnswerBackend makes answers durable across sessions.
*/
package answers
