package cardimage

import (
	"context"
	"fmt"

	"github.com/YourStyle/moodsprint/internal/constants"
	"github.com/YourStyle/moodsprint/internal/dedupe"
	"github.com/YourStyle/moodsprint/internal/game"
	"github.com/YourStyle/moodsprint/internal/imageutil"
	"github.com/YourStyle/moodsprint/internal/keys"
	"github.com/YourStyle/moodsprint/internal/logging"
	"github.com/YourStyle/moodsprint/internal/openaiclient"
	"github.com/YourStyle/moodsprint/internal/storage"
	"github.com/YourStyle/moodsprint/internal/worker"
)

// Pipeline fills in card template art asynchronously: minting a card
// never waits on OpenAI. Ensure enqueues a worker job; the job is
// deduplicated via singleflight so concurrent mints of the same
// template trigger at most one generation.
type Pipeline struct {
	repo storage.Repository
	pool *worker.Pool
}

func NewPipeline(repo storage.Repository, pool *worker.Pool) *Pipeline {
	return &Pipeline{repo: repo, pool: pool}
}

// Ensure schedules art generation for the template if its image is
// missing. Safe to call after every mint; cache hits are cheap.
func (p *Pipeline) Ensure(templateID uint, name string, rarity game.Rarity) {
	if p.pool == nil {
		return
	}
	p.pool.Submit(worker.Job{
		Kind: "card_image",
		Run: func(ctx context.Context) error {
			return p.generate(ctx, templateID, name, rarity)
		},
	})
}

// generate is the job body: re-check the repository, then generate,
// resize and persist under singleflight. A missing template image plus
// a failed OpenAI call is retryable; everything here is idempotent.
func (p *Pipeline) generate(ctx context.Context, templateID uint, name string, rarity game.Rarity) error {
	if img, err := p.repo.GetTemplateImage(templateID); err == nil && len(img) > 0 {
		return nil
	}
	key := keys.CardImageKey(name, rarity)

	ch := dedupe.ImageGroup.DoChan(key, func() (interface{}, error) {
		// Re-check in case another goroutine saved the image while we
		// waited on the group.
		if img, err := p.repo.GetTemplateImage(templateID); err == nil && len(img) > 0 {
			return img, nil
		}

		logging.Info("card art generating via OpenAI", logging.Fields{constants.LogFieldKey: key, constants.LogFieldName: name})
		imgBytes, err := openaiclient.GenerateCardImage(ctx, name)
		if err != nil {
			return nil, err
		}
		out, err := imageutil.ResizePNGBytes(imgBytes, 256, 256)
		if err != nil {
			return nil, err
		}
		if err := p.repo.SaveTemplateImage(templateID, out); err != nil {
			return nil, err
		}
		logging.Info("card art generated and saved", logging.Fields{constants.LogFieldKey: key, "size_bytes": len(out)})
		return out, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return fmt.Errorf("card art generation for %q: %w", key, r.Err)
		}
		return nil
	case <-ctx.Done():
		// The singleflight leader keeps running; only this caller's
		// wait is cancelled.
		return ctx.Err()
	}
}
