// Package schedule provides schedules for recurring work.
//
// This package includes:
//   - Schedule interface for computing the next run time
//   - Every() for fixed-interval schedules
//   - Daily() for daily schedules at a specific time
//   - Weekly() for weekly schedules on a specific day and time
//   - Cron() for cron expression-based schedules
//
// Most users should import the root package github.com/jdziat/callinvoker
// which re-exports these functions.
package schedule
