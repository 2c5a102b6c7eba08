package shortener

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/sqids/sqids-go"
)

var (
	alphabet = "1xnXM9kBN6cdYsAvjW3Co7luRePDh8ywaUQ4TStpfH0rqFVK2zimLGIJOgb5ZE"
	minLen   = 8
)

// ErrInvalidURL is returned by the local provider for input that is not a URL.
var ErrInvalidURL = errors.New("invalid url")

// Local issues codes under BASE_URL/s/ without calling out to a third party.
type Local struct {
	baseURL string
	sqid    *sqids.Sqids
	seq     atomic.Uint64
	epoch   uint64
}

// NewLocal returns a provider issuing links below baseURL.
func NewLocal(baseURL string) (*Local, error) {
	s, err := sqids.NewCustom(sqids.Options{
		MinLength: &minLen,
		Alphabet:  &alphabet,
	})
	if err != nil {
		return nil, err
	}
	return &Local{
		baseURL: baseURL,
		sqid:    s,
		epoch:   uint64(time.Now().UnixNano()),
	}, nil
}

func (l *Local) Name() string {
	return "local"
}

func (l *Local) Shorten(ctx context.Context, longURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !govalidator.IsURL(longURL) {
		return "", ErrInvalidURL
	}
	code, err := l.sqid.Encode([]uint64{l.epoch, l.seq.Add(1)})
	if err != nil {
		return "", err
	}
	return LocalShortURL(l.baseURL, code), nil
}
