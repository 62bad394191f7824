package panel

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/sleep-alarm/internal/domain/alarm"
	"github.com/oshokin/sleep-alarm/internal/input"
	"github.com/oshokin/sleep-alarm/internal/logger"
	pb "github.com/oshokin/sleep-alarm/internal/pb/v1"
	"github.com/oshokin/sleep-alarm/internal/service/engine"
)

// allDays selects every day in a SetField request.
const allDays = "all"

// Service abstracts the daemon operations the transport depends on.
type Service interface {
	Press(ctx context.Context, kind input.Kind, actor *domain.Actor) (bool, error)
	Status(ctx context.Context) engine.Status
	Schedule(ctx context.Context) (domain.Schedule, error)
	SetField(ctx context.Context, day *domain.Day, field, value string, actor *domain.Actor) error
	Now() time.Time
}

// Server implements the PanelService gRPC API.
type Server struct {
	pb.UnimplementedPanelServiceServer

	// service provides the daemon operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// PressButton queues a remote button press.
func (s *Server) PressButton(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := pb.String(req, pb.KeyButton)
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "button is required")
	}

	kind, err := input.ParseKind(name)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	accepted, err := s.service.Press(ctx, kind, toDomainActor(req))
	switch {
	case errors.Is(err, input.ErrQueueFull):
		return nil, status.Error(codes.ResourceExhausted, "input queue is full")
	case err != nil:
		return nil, status.Error(codes.Internal, "unable to queue press")
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			pb.KeyAccepted: structpb.NewBoolValue(accepted),
		},
	}, nil
}

// GetStatus reports the engine state and the firing alarm, if any.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toProtoStatus(s.service.Status(ctx), s.service.Now())
}

// GetSchedule returns the whole schedule.
func (s *Server) GetSchedule(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	sched, err := s.service.Schedule(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to read schedule", "error", err)

		return nil, status.Error(codes.Unavailable, "schedule unavailable")
	}

	return toProtoSchedule(&sched)
}

// SetField changes one setting and returns the updated schedule.
func (s *Server) SetField(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	field := pb.String(req, pb.KeyField)
	if field == "" {
		return nil, status.Error(codes.InvalidArgument, "field is required")
	}

	if !pb.Has(req, pb.KeyValue) {
		return nil, status.Error(codes.InvalidArgument, "value is required")
	}

	var day *domain.Day

	if name := strings.TrimSpace(pb.String(req, pb.KeyDay)); name != "" && name != allDays {
		parsed, err := domain.ParseDay(name)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}

		day = &parsed
	}

	err := s.service.SetField(ctx, day, field, pb.String(req, pb.KeyValue), toDomainActor(req))
	switch {
	case errors.Is(err, domain.ErrInvalidFieldValue):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case err != nil:
		return nil, status.Error(codes.Internal, "unable to persist setting")
	}

	return s.GetSchedule(ctx, nil)
}
