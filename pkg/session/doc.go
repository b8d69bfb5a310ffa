/*
Package session coordinates access to persisted layout snapshots.

A snapshot id works like a session: concurrent saves of the same id are
serialized in-process with reference-counted mutexes and, when a
DistributedLocker is configured, across replicas as well.
*/
package session
