// Package domain defines the core types of the campaign lifecycle:
// scopes, experiments, tasks, reference handles, result records and
// the reports derived from them.
//
// Everything in this package is plain data. Remote interaction lives
// behind the interfaces in pkg/ports; the lifecycle logic lives in
// internal/application/campaign.
package domain
