package panel

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/sleep-alarm/internal/domain/alarm"
	pb "github.com/oshokin/sleep-alarm/internal/pb/v1"
	"github.com/oshokin/sleep-alarm/internal/repository/schedule"
	"github.com/oshokin/sleep-alarm/internal/service/engine"
)

// passwordMask replaces a stored password in replies.
const passwordMask = "********"

// toDomainActor extracts the caller of a request.
func toDomainActor(req *structpb.Struct) *domain.Actor {
	actor := pb.Struct(req, pb.KeyActor)
	if actor == nil {
		return nil
	}

	return &domain.Actor{
		Hostname: pb.String(actor, pb.KeyHostname),
		Username: pb.String(actor, pb.KeyUsername),
	}
}

// toProtoStatus converts an engine snapshot.
func toProtoStatus(st engine.Status, now time.Time) (*structpb.Struct, error) {
	fields := map[string]any{
		pb.KeyState: st.State,
		pb.KeyNow:   now.Format(time.RFC3339),
	}

	if ep := st.Episode; ep != nil {
		fields[pb.KeyEpisode] = map[string]any{
			pb.KeyID:        ep.ID,
			pb.KeyDay:       ep.Day.String(),
			pb.KeySource:    ep.Source.String(),
			pb.KeyContent:   ep.Content.String(),
			pb.KeyStartedAt: ep.StartedAt.Format(time.RFC3339),
			pb.KeyTarget:    ep.Target.Format(time.RFC3339),
		}
	}

	return newStruct(fields)
}

// toProtoSchedule converts the schedule, masking the provider password.
func toProtoSchedule(sched *domain.Schedule) (*structpb.Struct, error) {
	password := ""
	if sched.Global.ProviderPassword != "" {
		password = passwordMask
	}

	days := make([]any, 0, len(sched.Days))

	for i := range sched.Days {
		ds := &sched.Days[i]

		aligned := ""
		if ds.AlignedTime != nil {
			aligned = ds.AlignedTime.String()
		}

		days = append(days, map[string]any{
			pb.KeyDay:                    ds.Day.String(),
			schedule.FieldEnabled:        ds.Enabled,
			schedule.FieldWakeTime:       ds.WakeTime.String(),
			schedule.FieldAlignedTime:    aligned,
			schedule.FieldMaxOversleep:   seconds(ds.MaxOversleep),
			schedule.FieldTimeToSleep:    seconds(ds.TimeToSleep),
			schedule.FieldDesiredSleep:   seconds(ds.DesiredSleep),
			schedule.FieldContentKind:    ds.Content.Kind.String(),
			schedule.FieldContentSubtype: ds.Content.Subtype,
		})
	}

	return newStruct(map[string]any{
		pb.KeyGlobal: map[string]any{
			schedule.FieldSnooze:            seconds(sched.Global.Snooze),
			schedule.FieldActivationTimeout: seconds(sched.Global.ActivationTimeout),
			schedule.FieldVolume:            sched.Global.VolumePercent,
			schedule.FieldProviderEmail:     sched.Global.ProviderEmail,
			schedule.FieldProviderPassword:  password,
		},
		pb.KeyDays: days,
	})
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode reply: %w", err)
	}

	return s, nil
}
