package em_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/askiada/go-emloh/pkg/em"
	"github.com/askiada/go-emloh/pkg/em/model"
	"github.com/askiada/go-emloh/pkg/paramio"
	"github.com/askiada/go-emloh/pkg/priors"
)

// countsData holds the B allele read counts and the depth of every heterozygous locus of a tumor sample.
type countsData struct {
	mu       sync.Mutex
	b, depth []float64
	readErr  error
	read     []string
}

func (d *countsData) ReadData(filenameBase string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.read = append(d.read, filenameBase)

	return d.readErr
}

// newCountsData creates loci drawn from two allelic states: half of them with a B allele fraction of 0.1, the other
// half balanced.
func newCountsData(t *testing.T) *countsData {
	t.Helper()

	d := &countsData{}
	for i := 0; i < 50; i++ {
		d.b = append(d.b, float64(3+i%3), float64(19+i%3))
		d.depth = append(d.depth, 40, 40)
	}

	return d
}

type mixtureParams struct {
	Weights []float64
	Probs   []float64
}

type mixtureStats struct {
	Resp     []float64
	BSum     []float64
	DepthSum []float64
	N        float64
}

type mixtureLatent struct {
	data  *countsData
	stats mixtureStats
}

func componentLogProb(params mixtureParams, k int, b, depth float64) float64 {
	return math.Log(params.Weights[k]) + distuv.Binomial{N: depth, P: params.Probs[k]}.LogProb(b)
}

func (l *mixtureLatent) Update(ctx context.Context, params mixtureParams, iteration int) error {
	k := len(params.Weights)
	l.stats = mixtureStats{
		Resp:     make([]float64, k),
		BSum:     make([]float64, k),
		DepthSum: make([]float64, k),
		N:        float64(len(l.data.b)),
	}

	logProbs := make([]float64, k)
	for i := range l.data.b {
		for j := 0; j < k; j++ {
			logProbs[j] = componentLogProb(params, j, l.data.b[i], l.data.depth[i])
		}

		em.NormalizeLogProbs(logProbs)

		for j, resp := range logProbs {
			l.stats.Resp[j] += resp
			l.stats.BSum[j] += resp * l.data.b[i]
			l.stats.DepthSum[j] += resp * l.data.depth[i]
		}
	}

	return nil
}

func (l *mixtureLatent) SufficientStatistics() mixtureStats {
	return l.stats
}

type mixtureParameters struct {
	omega  []float64
	params mixtureParams
}

func (p *mixtureParameters) Parameters() mixtureParams {
	return p.params
}

// Update computes the maximum a posteriori weights under a Dirichlet prior of concentration omega.
func (p *mixtureParameters) Update(ctx context.Context, stats mixtureStats) error {
	k := len(stats.Resp)
	weights := make([]float64, k)
	probs := make([]float64, k)

	var omegaSum float64
	for _, o := range p.omega {
		omegaSum += o
	}

	for j := 0; j < k; j++ {
		weights[j] = (stats.Resp[j] + p.omega[j] - 1) / (stats.N + omegaSum - float64(k))
		probs[j] = p.params.Probs[j]

		if stats.DepthSum[j] > 0 {
			probs[j] = math.Min(math.Max(stats.BSum[j]/stats.DepthSum[j], 1e-6), 1-1e-6)
		}
	}

	p.params = mixtureParams{Weights: weights, Probs: probs}

	return nil
}

func (p *mixtureParameters) WriteParameters(filenameBase string) error {
	return paramio.WriteNPZ(paramio.NPZFilename(filenameBase), map[string][]float64{
		"weights": p.params.Weights,
		"probs":   p.params.Probs,
	})
}

type mixtureLikelihood struct {
	data *countsData
}

func (l *mixtureLikelihood) LogLikelihood(params mixtureParams, p *priors.Priors) (float64, error) {
	k := len(params.Weights)

	var ll float64

	logProbs := make([]float64, k)
	for i := range l.data.b {
		for j := 0; j < k; j++ {
			logProbs[j] = componentLogProb(params, j, l.data.b[i], l.data.depth[i])
		}

		ll += em.NormalizeLogProbs(logProbs)
	}

	for j := 0; j < k; j++ {
		ll += (p.Omega[j] - 1) * math.Log(params.Weights[j])
	}

	return ll, nil
}

// mixtureFactory builds a binomial mixture with one component per tumor copy number of the priors. The restart
// parameters p0, p1, ... set the initial B allele fraction of each component.
func mixtureFactory(ctx context.Context, setup *em.Setup) (*em.Components[mixtureParams, mixtureStats], error) {
	data := setup.Data.(*countsData)
	k := len(setup.Priors.Omega)

	params := mixtureParams{
		Weights: make([]float64, k),
		Probs:   make([]float64, k),
	}

	for j := 0; j < k; j++ {
		params.Weights[j] = 1 / float64(k)
		params.Probs[j] = float64(j+1) / float64(k+1)

		if p, err := setup.RestartParameters.Get(restartKey(j)); err == nil {
			params.Probs[j] = p
		}
	}

	return &em.Components[mixtureParams, mixtureStats]{
		LatentVariables: &mixtureLatent{data: data},
		ModelParameters: &mixtureParameters{omega: setup.Priors.Omega, params: params},
		ModelLikelihood: &mixtureLikelihood{data: data},
	}, nil
}

func restartKey(j int) string {
	return "p" + string(rune('0'+j))
}

// scripted components return a fixed sequence of log-likelihoods. The parameters count the M-steps and the
// statistics count the E-steps.
type scriptedLatent struct {
	iterations []int
	err        error
}

func (l *scriptedLatent) Update(ctx context.Context, params float64, iteration int) error {
	if l.err != nil {
		return l.err
	}

	l.iterations = append(l.iterations, iteration)

	return nil
}

func (l *scriptedLatent) SufficientStatistics() int {
	return len(l.iterations)
}

type scriptedParameters struct {
	updates int
	stats   []int
	err     error
}

func (p *scriptedParameters) Parameters() float64 {
	return float64(p.updates)
}

func (p *scriptedParameters) Update(ctx context.Context, stats int) error {
	if p.err != nil {
		return p.err
	}

	p.updates++
	p.stats = append(p.stats, stats)

	return nil
}

type scriptedLikelihood struct {
	lls    []float64
	params []float64
	calls  int
	err    error
}

func (l *scriptedLikelihood) LogLikelihood(params float64, p *priors.Priors) (float64, error) {
	if l.err != nil {
		return 0, l.err
	}

	l.params = append(l.params, params)
	idx := l.calls
	if idx >= len(l.lls) {
		idx = len(l.lls) - 1
	}

	l.calls++

	return l.lls[idx], nil
}

// blockingLatent waits in its first E-step until the training is cancelled.
type blockingLatent struct {
	started  chan struct{}
	once     sync.Once
	canceled bool
}

func newBlockingLatent() *blockingLatent {
	return &blockingLatent{started: make(chan struct{})}
}

func (l *blockingLatent) Update(ctx context.Context, params float64, iteration int) error {
	l.once.Do(func() { close(l.started) })
	<-ctx.Done()
	l.canceled = true

	return ctx.Err()
}

func (l *blockingLatent) SufficientStatistics() int {
	return 0
}

type scripted struct {
	latent     *scriptedLatent
	parameters *scriptedParameters
	likelihood *scriptedLikelihood
}

func newScripted(lls ...float64) *scripted {
	return &scripted{
		latent:     &scriptedLatent{},
		parameters: &scriptedParameters{},
		likelihood: &scriptedLikelihood{lls: lls},
	}
}

func (s *scripted) factory(ctx context.Context, setup *em.Setup) (*em.Components[float64, int], error) {
	return &em.Components[float64, int]{
		LatentVariables: s.latent,
		ModelParameters: s.parameters,
		ModelLikelihood: s.likelihood,
	}, nil
}

type stageOutput struct {
	stage     string
	iteration int
}

// recordingObserver keeps every call it receives.
type recordingObserver struct {
	news       int
	links      [][2]string
	outputs    []stageOutput
	iterations []model.IterationInfo
	finished   int
	err        error
}

func (r *recordingObserver) New() error {
	r.news++

	return nil
}

func (r *recordingObserver) PrepareStage(parentStage, stage *model.StageInfo) error {
	r.links = append(r.links, [2]string{parentStage.Name, stage.Name})

	return nil
}

func (r *recordingObserver) OnStageOutput(stage *model.StageInfo, iteration int, elapsed time.Duration) error {
	r.outputs = append(r.outputs, stageOutput{stage: stage.Name, iteration: iteration})

	return nil
}

func (r *recordingObserver) OnIteration(info *model.IterationInfo) error {
	r.iterations = append(r.iterations, *info)

	return r.err
}

func (r *recordingObserver) Finish(totalDuration time.Duration) error {
	r.finished++

	return nil
}
