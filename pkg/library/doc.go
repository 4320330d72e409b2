/*
Package library serializes access to saved patches.

Several connections, possibly on several backend replicas, may load and save
the same patch. The Manager holds one local lock per patch name, reference
counted so idle names leave nothing behind, and optionally a distributed lock
so replicas sharing a store don't interleave writes.
*/
package library
