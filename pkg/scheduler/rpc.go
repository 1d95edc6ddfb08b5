package scheduler

import "github.com/kassaye-yigzaw/sparrow/pkg/types"

// Handler adapts Scheduler's idiomatic Go methods to the
// (args, *reply) error shape net/rpc requires, so it can be registered
// under the name "Scheduler" with rpc.NewServer() and served through
// rpcpool.Serve. Every exported method here is a thin, allocation-only
// wrapper; all behavior lives on Scheduler itself.
type Handler struct {
	scheduler *Scheduler
}

// NewHandler wraps s for RPC registration.
func NewHandler(s *Scheduler) *Handler {
	return &Handler{scheduler: s}
}

// SubmitJobArgs is the request payload for "Scheduler.SubmitJob".
type SubmitJobArgs struct {
	Request types.Request
}

// SubmitJobReply carries the allocated request ID.
type SubmitJobReply struct {
	RequestID string
}

// SubmitJob registers a new job for placement.
func (h *Handler) SubmitJob(args SubmitJobArgs, reply *SubmitJobReply) error {
	requestID, err := h.scheduler.SubmitJob(args.Request)
	if err != nil {
		return err
	}
	reply.RequestID = requestID
	return nil
}

// GetTaskArgs is the request payload for "Scheduler.GetTask".
type GetTaskArgs struct {
	RequestID string
	Worker    types.WorkerIdentity
}

// GetTaskReply carries zero or one launch spec, per Placer's contract.
type GetTaskReply struct {
	Specs []types.LaunchSpec
}

// GetTask answers one pending reservation credit for the calling worker.
func (h *Handler) GetTask(args GetTaskArgs, reply *GetTaskReply) error {
	reply.Specs = h.scheduler.GetTask(args.RequestID, args.Worker)
	return nil
}

// SendFrontendMessageArgs is the request payload for
// "Scheduler.SendFrontendMessage".
type SendFrontendMessageArgs struct {
	AppId      string
	FullTaskID string
	Status     int
	Payload    []byte
}

// SendFrontendMessage relays a task outcome to its owning frontend.
func (h *Handler) SendFrontendMessage(args SendFrontendMessageArgs, reply *struct{}) error {
	h.scheduler.SendFrontendMessage(args.AppId, args.FullTaskID, args.Status, args.Payload)
	return nil
}

// RegisterFrontendArgs is the request payload for
// "Scheduler.RegisterFrontend".
type RegisterFrontendArgs struct {
	AppId   string
	Address string
}

// RegisterFrontendReply carries whether the registration was accepted.
type RegisterFrontendReply struct {
	Accepted bool
}

// RegisterFrontend records appId's completion-notification address.
func (h *Handler) RegisterFrontend(args RegisterFrontendArgs, reply *RegisterFrontendReply) error {
	reply.Accepted = h.scheduler.RegisterFrontend(args.AppId, args.Address)
	return nil
}
