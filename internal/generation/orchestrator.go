// Package generation coordinates redesign requests against the views of a
// workspace: batch "style" runs from every original, and iterative
// "refine" runs against the active view.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"interiorviz/internal/imagecodec"
	llmclient "interiorviz/internal/llmClient"
	"interiorviz/internal/preset"
	"interiorviz/internal/workspace"
)

const DefaultPromptSuffix = "Maintain the structural integrity and perspective of the original room. High quality, photorealistic interior design render."

const (
	noticeBatchFailed  = "Something went wrong with the design generation."
	noticeRefineFailed = "Could not refine the image."
)

type Mode string

const (
	ModeStyle  Mode = "style"
	ModeRefine Mode = "refine"
)

// BatchResult reports how each view of a style run settled. Dropped views
// were removed while their request was in flight; their results were
// discarded.
type BatchResult struct {
	Succeeded []string         `json:"succeeded"`
	Failed    map[string]error `json:"-"`
	Dropped   []string         `json:"dropped,omitempty"`
}

// FailedIDs lists the views whose request failed.
func (r BatchResult) FailedIDs() []string {
	out := make([]string, 0, len(r.Failed))
	for id := range r.Failed {
		out = append(out, id)
	}
	return out
}

// Outcome is the result of a free-text submission.
type Outcome struct {
	Mode  Mode                `json:"mode"`
	Batch *BatchResult        `json:"batch,omitempty"`
	View  *workspace.RoomView `json:"view,omitempty"`
}

type Option func(*Orchestrator)

// WithLogger overrides log.Default().
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithPromptSuffix replaces the instruction appended to every prompt. An
// empty suffix sends prompts unchanged.
func WithPromptSuffix(s string) Option {
	return func(o *Orchestrator) { o.suffix = strings.TrimSpace(s) }
}

// WithRequestTimeout bounds each collaborator call. Zero means no bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

type Orchestrator struct {
	views   *workspace.Store
	gen     llmclient.ImageGenerator
	presets *preset.Catalog
	suffix  string
	timeout time.Duration
	log     *log.Logger
}

func New(views *workspace.Store, gen llmclient.ImageGenerator, presets *preset.Catalog, opts ...Option) *Orchestrator {
	if presets == nil {
		presets = preset.Default()
	}
	o := &Orchestrator{
		views:   views,
		gen:     gen,
		presets: presets,
		suffix:  DefaultPromptSuffix,
		timeout: 2 * time.Minute,
		log:     log.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// task is one in-flight generation, keyed by view id.
type task struct {
	viewID string
	source imagecodec.EmbeddedImage
	prompt string
}

// Submit handles free-text input: applyToAll selects a style run from the
// originals, otherwise the active view is refined.
func (o *Orchestrator) Submit(ctx context.Context, prompt string, applyToAll bool) (Outcome, error) {
	o.views.SetEditPrompt(prompt)
	if applyToAll {
		res, err := o.ApplyStyle(ctx, prompt)
		if err != nil {
			return Outcome{Mode: ModeStyle}, err
		}
		return Outcome{Mode: ModeStyle, Batch: &res}, nil
	}
	v, err := o.Refine(ctx, prompt)
	if err != nil {
		return Outcome{Mode: ModeRefine}, err
	}
	return Outcome{Mode: ModeRefine, View: &v}, nil
}

// ApplyPreset runs a preset as a style run regardless of any toggle.
func (o *Orchestrator) ApplyPreset(ctx context.Context, presetID string) (BatchResult, error) {
	p, err := o.presets.Lookup(presetID)
	if err != nil {
		return BatchResult{}, err
	}
	return o.ApplyStyle(ctx, p.Prompt)
}

// ApplyStyle redesigns every view from its original image. All views are
// marked loading before the first request; each view is reconciled by id
// as its own request settles, and a failure leaves that view's previous
// result in place. A failing view, even one whose collaborator panicked,
// is reported in the result; ErrBatchFailed is only returned when the run
// aborts before reconciling.
func (o *Orchestrator) ApplyStyle(ctx context.Context, prompt string) (res BatchResult, err error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return BatchResult{}, ErrEmptyPrompt
	}
	marked, err := o.views.BeginGenerationAll()
	if err != nil {
		return BatchResult{}, err
	}
	if len(marked) == 0 {
		return BatchResult{}, nil
	}

	ids := make([]string, 0, len(marked))
	tasks := make([]task, 0, len(marked))
	for _, v := range marked {
		ids = append(ids, v.ID)
		tasks = append(tasks, task{viewID: v.ID, source: v.Original, prompt: prompt})
	}
	defer func() {
		if r := recover(); r != nil {
			o.views.ClearLoading(ids...)
			o.log.Printf("generation: style batch aborted: %v", r)
			o.views.Notify("", noticeBatchFailed)
			res, err = BatchResult{}, fmt.Errorf("%w: %v", ErrBatchFailed, r)
		}
	}()

	res = o.runBatch(context.WithoutCancel(ctx), tasks)
	if n := len(res.Failed); n > 0 {
		o.views.Notify("", fmt.Sprintf("Could not generate %d of %d views.", n, len(tasks)))
	}
	return res, nil
}

func (o *Orchestrator) runBatch(ctx context.Context, tasks []task) BatchResult {
	var (
		mu  sync.Mutex
		res = BatchResult{Failed: make(map[string]error)}
	)
	var g errgroup.Group
	for _, t := range tasks {
		g.Go(func() error {
			img, err := o.execute(ctx, t)
			live := o.reconcile(t.viewID, img, err)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case !live:
				res.Dropped = append(res.Dropped, t.viewID)
			case err != nil:
				res.Failed[t.viewID] = err
			default:
				res.Succeeded = append(res.Succeeded, t.viewID)
			}
			return nil
		})
	}
	_ = g.Wait()
	return res
}

// Refine redesigns the active view, continuing from its latest result when
// one exists. Only the active view is touched.
func (o *Orchestrator) Refine(ctx context.Context, prompt string) (workspace.RoomView, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return workspace.RoomView{}, ErrEmptyPrompt
	}
	v, err := o.views.BeginGenerationActive()
	if errors.Is(err, workspace.ErrNoActiveView) {
		return workspace.RoomView{}, ErrNoActiveView
	}
	if err != nil {
		return workspace.RoomView{}, err
	}
	t := task{viewID: v.ID, source: v.Best(), prompt: prompt}

	img, err := o.execute(context.WithoutCancel(ctx), t)
	live := o.reconcile(t.viewID, img, err)
	if err != nil {
		o.views.Notify(t.viewID, noticeRefineFailed)
		return workspace.RoomView{}, fmt.Errorf("refine view %s: %w", t.viewID, err)
	}
	if !live {
		return workspace.RoomView{}, fmt.Errorf("refine view %s: %w", t.viewID, workspace.ErrInvalidReference)
	}
	o.views.ClearEditPrompt()
	out, _ := o.views.View(t.viewID)
	return out, nil
}

// reconcile applies a settled task to whatever the store holds now and
// reports whether the view still exists.
func (o *Orchestrator) reconcile(viewID string, img imagecodec.EmbeddedImage, err error) bool {
	if err != nil {
		o.log.Printf("generation: view %s failed (%s): %v", viewID, Classify(err), err)
		return o.views.FailGeneration(viewID)
	}
	live := o.views.CompleteGeneration(viewID, img)
	if !live {
		o.log.Printf("generation: view %s removed while in flight, result dropped", viewID)
	}
	return live
}

// execute performs one collaborator call. Panics are converted into
// ErrUnexpected so the caller can still reconcile the view.
func (o *Orchestrator) execute(ctx context.Context, t task) (img imagecodec.EmbeddedImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = "", fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()

	payload, err := imagecodec.StripEnvelope(t.source)
	if err != nil {
		return "", err
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	out, err := o.gen.GenerateImage(ctx, llmclient.ImageRequest{
		Source: llmclient.Image{MIMEType: payload.MIMEType, Data: payload.Data},
		Prompt: o.composePrompt(t.prompt),
	})
	if err != nil {
		return "", err
	}
	if len(out.Data) == 0 {
		return "", ErrNoImageDataReturned
	}
	return imagecodec.Encode(out.MIMEType, out.Data), nil
}

func (o *Orchestrator) composePrompt(prompt string) string {
	if o.suffix == "" {
		return prompt
	}
	return prompt + " " + o.suffix
}
