/*
Package log provides sparrowd's structured logging, built on zerolog.

A single global Logger is configured once via Init and read everywhere
else through component-scoped child loggers (WithComponent). The Audit
helpers in this package emit a fixed set of named lifecycle events —
arrived, node_monitor_launch_enqueue_task, node_monitor_complete_enqueue_task,
assigned_task, get_task_no_task — so every caller produces the same field
names instead of hand-rolling them at each call site.
*/
package log
