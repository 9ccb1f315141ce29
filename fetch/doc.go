// Package fetch defines the platform fetcher contract and a registry for
// looking fetchers up by platform.
//
// A Fetcher turns a platform identifier into a populated identity node. The
// package ships a deterministic SimulatedFetcher for development and tests;
// real API-backed fetchers implement the same interface and register
// alongside it.
package fetch
