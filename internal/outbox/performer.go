package outbox

import (
	"context"
	"fmt"

	"github.com/jfmyers9/scloud/pkg/soundcloud"
)

// Performer replays a single action against the API
type Performer interface {
	Perform(ctx context.Context, a Action) error
}

// ClientPerformer replays actions through a soundcloud.Client
type ClientPerformer struct {
	Client *soundcloud.Client
}

// Perform issues the call matching a.Kind and waits for its completion.
func (p ClientPerformer) Perform(ctx context.Context, a Action) error {
	switch a.Kind {
	case KindFavorite, KindUnfavorite, KindFollow, KindUnfollow:
		resp, err := soundcloud.Await(ctx, func(done func(soundcloud.SimpleAPIResponse[bool])) soundcloud.CancelableOperation {
			return p.toggle(a, done)
		})
		if err != nil {
			return err
		}
		return responseError(resp.Response)
	case KindComment:
		resp, err := soundcloud.Await(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.Comment])) soundcloud.CancelableOperation {
			return p.Client.Tracks().Comment(a.TargetID, a.Body, a.At, done)
		})
		if err != nil {
			return err
		}
		return responseError(resp.Response)
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

func (p ClientPerformer) toggle(a Action, done func(soundcloud.SimpleAPIResponse[bool])) soundcloud.CancelableOperation {
	switch a.Kind {
	case KindFavorite:
		return p.Client.Tracks().Favorite(a.UserID, a.TargetID, done)
	case KindUnfavorite:
		return p.Client.Tracks().Unfavorite(a.UserID, a.TargetID, done)
	case KindFollow:
		return p.Client.Users().Follow(a.TargetID, done)
	default:
		return p.Client.Users().Unfollow(a.TargetID, done)
	}
}

func responseError[T any](r soundcloud.Result[T, *soundcloud.Error]) error {
	if err, failed := r.Err(); failed {
		return err
	}
	return nil
}
