package panel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/sleep-alarm/internal/config"
	domain "github.com/oshokin/sleep-alarm/internal/domain/alarm"
	"github.com/oshokin/sleep-alarm/internal/logger"
	pb "github.com/oshokin/sleep-alarm/internal/pb/v1"
	"github.com/oshokin/sleep-alarm/internal/repository/schedule"
	"github.com/oshokin/sleep-alarm/internal/service/common"
)

// Options configures every panel command.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// Out receives command output, stdout when nil.
	Out io.Writer
}

// session is an open connection with the caller identity.
type session struct {
	client *common.Client
	actor  *domain.Actor
	out    io.Writer
}

// connect loads settings and dials the daemon.
func connect(ctx context.Context, opts *Options) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = config.Default()
	case err != nil:
		return nil, err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	actor, err := common.DetectActor()
	if err != nil {
		return nil, err
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	logger.DebugKV(ctx, "Connected to daemon", "server_address", serverAddress, "actor", actor)

	return &session{client: client, actor: actor, out: out}, nil
}

func (s *session) close() {
	_ = s.client.Close()
}

// Press presses button on the daemon.
func Press(ctx context.Context, opts *Options, button string) error {
	ctx = logger.WithName(ctx, "sleep-alarm-panel")

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	accepted, err := s.client.PressButton(ctx, s.actor, button)
	if err != nil {
		return err
	}

	if !accepted {
		_, err = fmt.Fprintf(s.out, "%s ignored (pressed too quickly)\n", button)

		return err
	}

	_, err = fmt.Fprintf(s.out, "%s pressed\n", button)

	return err
}

// Status prints the engine state.
func Status(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "sleep-alarm-panel")

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	reply, err := s.client.GetStatus(ctx)
	if err != nil {
		return err
	}

	return WriteStatus(s.out, reply)
}

// Schedule prints the schedule.
func Schedule(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "sleep-alarm-panel")

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	reply, err := s.client.GetSchedule(ctx)
	if err != nil {
		return err
	}

	return WriteSchedule(s.out, reply)
}

// Set changes one setting and prints the resulting schedule. An empty day
// applies a daily field to every day.
func Set(ctx context.Context, opts *Options, day, field, value string) error {
	ctx = logger.WithName(ctx, "sleep-alarm-panel")

	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	reply, err := s.client.SetField(ctx, s.actor, day, field, value)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Setting changed", "day", day, "field", field)

	return WriteSchedule(s.out, reply)
}

// WriteStatus renders a GetStatus reply.
func WriteStatus(w io.Writer, reply *structpb.Struct) error {
	episode := pb.Struct(reply, pb.KeyEpisode)
	if episode == nil {
		_, err := fmt.Fprintf(w, "%s at %s\n", pb.String(reply, pb.KeyState), pb.String(reply, pb.KeyNow))

		return err
	}

	_, err := fmt.Fprintf(w, "%s at %s: %s alarm of %s playing %s since %s (episode %s)\n",
		pb.String(reply, pb.KeyState),
		pb.String(reply, pb.KeyNow),
		pb.String(episode, pb.KeySource),
		pb.String(episode, pb.KeyDay),
		pb.String(episode, pb.KeyContent),
		pb.String(episode, pb.KeyStartedAt),
		pb.String(episode, pb.KeyID))

	return err
}

// WriteSchedule renders a GetSchedule or SetField reply as a table.
func WriteSchedule(w io.Writer, reply *structpb.Struct) error {
	global := pb.Struct(reply, pb.KeyGlobal)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "snooze\t%s s\n", number(global, schedule.FieldSnooze))
	fmt.Fprintf(tw, "timeout\t%s s\n", number(global, schedule.FieldActivationTimeout))
	fmt.Fprintf(tw, "volume\t%s %%\n", number(global, schedule.FieldVolume))
	fmt.Fprintf(tw, "account\t%s\n\n", pb.String(global, schedule.FieldProviderEmail))
	fmt.Fprintln(tw, "day\tenabled\twake\taligned\toversleep\tlatency\tsleep\tcontent")

	for _, value := range reply.GetFields()[pb.KeyDays].GetListValue().GetValues() {
		day := value.GetStructValue()

		aligned := pb.String(day, schedule.FieldAlignedTime)
		if aligned == "" {
			aligned = "-"
		}

		content := pb.String(day, schedule.FieldContentKind)
		if subtype := pb.String(day, schedule.FieldContentSubtype); subtype != "" {
			content += ":" + subtype
		}

		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\t%s\t%s\t%s\n",
			pb.String(day, pb.KeyDay),
			pb.Bool(day, schedule.FieldEnabled),
			pb.String(day, schedule.FieldWakeTime),
			aligned,
			number(day, schedule.FieldMaxOversleep),
			number(day, schedule.FieldTimeToSleep),
			number(day, schedule.FieldDesiredSleep),
			content)
	}

	return tw.Flush()
}

func number(s *structpb.Struct, key string) string {
	return fmt.Sprintf("%.0f", s.GetFields()[key].GetNumberValue())
}
