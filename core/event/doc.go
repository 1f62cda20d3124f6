// Package event publishes reconciliation cycle results to NATS JetStream.
//
// Every executed cycle is wrapped in an Envelope and published to "<subject>.<outcome>",
// e.g. cryptogram.sync.cycles.partial. Without a configured or reachable server the
// publisher silently drops events so reconciliation never depends on NATS.
package event
