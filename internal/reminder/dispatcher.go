package reminder

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	gosync "sync"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nhle/plant-care/internal/model"
)

// Dispatcher sends one reminder per owner for a batch of due plants.
type Dispatcher struct {
	sender      Sender
	from        string
	limiter     *rate.Limiter
	concurrency int
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDispatcher creates a Dispatcher sending at most ratePerMinute
// messages per minute.
func NewDispatcher(sender Sender, from string, ratePerMinute int, logger zerolog.Logger) *Dispatcher {
	if ratePerMinute < 1 {
		ratePerMinute = 1
	}
	burst := ratePerMinute
	if burst > 10 {
		burst = 10
	}
	return &Dispatcher{
		sender:      sender,
		from:        from,
		limiter:     rate.NewLimiter(rate.Limit(float64(ratePerMinute)/60), burst),
		concurrency: 4,
		logger:      logger,
		now:         time.Now,
	}
}

// Remind groups plants by owner email and sends each owner one message.
// Plants without a valid owner address are skipped. Every owner is
// attempted; failures are joined into the returned error.
func (d *Dispatcher) Remind(ctx context.Context, day time.Time, plants []model.Plant) error {
	groups := groupByOwner(plants)
	if len(groups) == 0 {
		return nil
	}

	var (
		mu   gosync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, grp := range groups {
		g.Go(func() error {
			err := d.sendOne(gctx, day, grp)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("reminding %s: %w", grp.owner.Address, err))
				mu.Unlock()
				d.logger.Warn().Err(err).Str("owner", grp.owner.Address).Msg("reminder not sent")
				return nil
			}
			d.logger.Info().Str("owner", grp.owner.Address).Int("plants", len(grp.plants)).Msg("reminder sent")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) sendOne(ctx context.Context, day time.Time, grp ownerGroup) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	msg, err := Compose(d.from, grp.owner, day, grp.plants, d.now())
	if err != nil {
		return err
	}
	return d.sender.Send(ctx, d.from, []string{grp.owner.Address}, msg)
}

type ownerGroup struct {
	owner  *gomail.Address
	plants []model.Plant
}

func groupByOwner(plants []model.Plant) []ownerGroup {
	byEmail := make(map[string]*ownerGroup)
	for _, p := range plants {
		addr, err := mail.ParseAddress(p.OwnerEmail)
		if err != nil {
			continue
		}
		key := strings.ToLower(addr.Address)
		grp, ok := byEmail[key]
		if !ok {
			grp = &ownerGroup{owner: &gomail.Address{Name: p.OwnerName, Address: addr.Address}}
			byEmail[key] = grp
		}
		grp.plants = append(grp.plants, p)
	}

	out := make([]ownerGroup, 0, len(byEmail))
	for _, grp := range byEmail {
		out = append(out, *grp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].owner.Address < out[j].owner.Address })
	return out
}
