/*
Package scheduler is sparrowd's front door: it implements the Sparrow
probe/late-bind protocol through SubmitJob, GetTask,
SendFrontendMessage, and RegisterFrontend. It owns request-ID
allocation, placer construction, reservation dispatch over rpcpool, and
the registry lifecycle, but delegates the actual placement math to
pkg/placer and the worker set to pkg/clusterstate.
*/
package scheduler
