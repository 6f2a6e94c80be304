// Package app provides the application service layer.
//
// Orchestrates use cases: email intake, batch sentiment analysis through the
// score cache, dashboard aggregation and trend reporting. Sits between HTTP
// handlers and the store/cache adapters and depends only on domain interfaces.
package app
