//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/sleep-alarm/internal/config"
	domain "github.com/oshokin/sleep-alarm/internal/domain/alarm"
	pb "github.com/oshokin/sleep-alarm/internal/pb/v1"
)

// Client wraps the gRPC PanelService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn *grpc.ClientConn
	// api is the PanelService client interface.
	api pb.PanelServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
)

// Dial establishes a gRPC connection to the sleep-alarm daemon.
// Note: this uses insecure transport credentials; the panel is meant for the
// local network of the device.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial sleep-alarm daemon: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         pb.NewPanelServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// PressButton presses a button remotely and reports whether it was queued.
func (c *Client) PressButton(ctx context.Context, actor *domain.Actor, button string) (bool, error) {
	if actor == nil {
		return false, errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	request := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			pb.KeyButton: structpb.NewStringValue(button),
			pb.KeyActor:  pb.NewActor(actor.Hostname, actor.Username),
		},
	}

	response, err := c.api.PressButton(callCtx, request)
	if err != nil {
		return false, fmt.Errorf("press %s: %w", button, err)
	}

	return pb.Bool(response, pb.KeyAccepted), nil
}

// GetStatus retrieves the engine state.
func (c *Client) GetStatus(ctx context.Context) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetStatus(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return resp, nil
}

// GetSchedule retrieves the whole schedule.
func (c *Client) GetSchedule(ctx context.Context) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetSchedule(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	return resp, nil
}

// SetField changes one setting. An empty day applies daily fields to every day.
func (c *Client) SetField(
	ctx context.Context,
	actor *domain.Actor,
	day, field, value string,
) (*structpb.Struct, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	request := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			pb.KeyField: structpb.NewStringValue(field),
			pb.KeyValue: structpb.NewStringValue(value),
			pb.KeyActor: pb.NewActor(actor.Hostname, actor.Username),
		},
	}

	if day != "" {
		request.Fields[pb.KeyDay] = structpb.NewStringValue(day)
	}

	response, err := c.api.SetField(callCtx, request)
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", field, err)
	}

	return response, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
