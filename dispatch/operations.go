package dispatch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/viant/ranking/align"
	"github.com/viant/ranking/index"
	"github.com/viant/ranking/index/bruteforce"
	"github.com/viant/ranking/index/cover"
	"github.com/viant/ranking/iterate"
	"github.com/viant/ranking/keyword"
	"github.com/viant/ranking/object"
	"github.com/viant/ranking/rank"
	"github.com/viant/ranking/sample"
	"github.com/viant/ranking/store"
)

const defaultK = 10

// vectorQuery holds the parameters shared by the vector operations.
type vectorQuery struct {
	dataset string
	query   *object.Vector
	metric  object.Metric
	index   string
}

func parseVectorQuery(params Params) (vectorQuery, error) {
	var q vectorQuery
	var err error
	if q.dataset, err = params.RequiredString("dataset"); err != nil {
		return q, err
	}
	if q.query, err = params.Vector("query"); err != nil {
		return q, err
	}
	if q.metric, err = params.Metric("metric"); err != nil {
		return q, err
	}
	q.index = strings.ToLower(params.String("index", ""))
	switch q.index {
	case "", "store", "bruteforce", "cover":
	default:
		return q, fmt.Errorf("%w: index: unsupported %q", ErrInvalidParam, q.index)
	}
	return q, nil
}

// load builds an in-memory index over the dataset.
func (q vectorQuery) load(ctx context.Context, source store.Store) (index.Index, error) {
	var idx index.Index
	if q.index == "cover" {
		idx = cover.New(cover.WithMetric(q.metric))
	} else {
		idx = bruteforce.New(q.metric)
	}
	var vectors []*object.Vector
	for v, err := range source.Objects(ctx, q.dataset) {
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, v)
	}
	if err := idx.Build(vectors); err != nil {
		return nil, err
	}
	return idx, nil
}

// NewKNN returns the k objects of dataset nearest to query. Parameters:
// dataset, query, k, metric and index (store, bruteforce or cover).
func NewKNN(params Params) (Operation, error) {
	q, err := parseVectorQuery(params)
	if err != nil {
		return nil, err
	}
	k, err := params.PositiveInt("k", defaultK)
	if err != nil {
		return nil, err
	}
	return OperationFunc(func(ctx context.Context, source store.Store) (Ranked, error) {
		if q.index == "" || q.index == "store" {
			return source.KNN(ctx, q.dataset, q.query, k, q.metric)
		}
		idx, err := q.load(ctx, source)
		if err != nil {
			return nil, err
		}
		return idx.KNN(q.query, k)
	}), nil
}

// NewRange returns the objects whose distance to query lies in [min, radius].
func NewRange(params Params) (Operation, error) {
	q, err := parseVectorQuery(params)
	if err != nil {
		return nil, err
	}
	radius, err := params.Float("radius", -1)
	if err != nil {
		return nil, err
	}
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius is required and must not be negative", ErrInvalidParam)
	}
	minDistance, err := params.Float("min", 0)
	if err != nil {
		return nil, err
	}
	return OperationFunc(func(ctx context.Context, source store.Store) (Ranked, error) {
		idx, err := q.load(ctx, source)
		if err != nil {
			return nil, err
		}
		found, err := idx.Range(q.query, radius)
		if err != nil || minDistance <= 0 {
			return found, err
		}
		restricted, err := rank.New(1, rank.Unlimited)
		if err != nil {
			return nil, err
		}
		for item := range found.DistanceRestricted(minDistance, radius) {
			if _, err := restricted.Add(item); err != nil {
				return nil, err
			}
		}
		return restricted, nil
	}), nil
}

// NewRerank retrieves candidates nearest to query and ranks them by
// original*weight + distance(reference, candidate). The threshold policy
// selects whether the reported threshold is the ranked or the original
// distance of the worst kept item.
func NewRerank(params Params) (Operation, error) {
	q, err := parseVectorQuery(params)
	if err != nil {
		return nil, err
	}
	k, err := params.PositiveInt("k", defaultK)
	if err != nil {
		return nil, err
	}
	candidates, err := params.PositiveInt("candidates", 4*k)
	if err != nil {
		return nil, err
	}
	weight, err := params.Float("weight", 1)
	if err != nil {
		return nil, err
	}
	reference := q.query
	if _, ok := params["reference"]; ok {
		if reference, err = params.Vector("reference"); err != nil {
			return nil, err
		}
	}
	rerankMetric := q.metric
	if _, ok := params["rerank_metric"]; ok {
		if rerankMetric, err = params.Metric("rerank_metric"); err != nil {
			return nil, err
		}
	}
	var policy rank.ThresholdPolicy
	switch strings.ToLower(params.String("policy", "ranked")) {
	case "ranked":
		policy = rank.ThresholdRanked
	case "original":
		policy = rank.ThresholdOriginal
	default:
		return nil, fmt.Errorf("%w: policy: unsupported %q", ErrInvalidParam, params["policy"])
	}
	config := rank.RerankConfig{
		Reference: reference,
		Distance:  rerankMetric.Function(),
		Weight:    weight,
		RankOnAdd: true,
		Policy:    policy,
	}
	return OperationFunc(func(ctx context.Context, source store.Store) (Ranked, error) {
		found, err := source.KNN(ctx, q.dataset, q.query, candidates, q.metric)
		if err != nil {
			return nil, err
		}
		reranked, err := rank.NewReranking(1, k, config)
		if err != nil {
			return nil, err
		}
		if _, err := reranked.AddAll(found.Items()); err != nil {
			return nil, err
		}
		return reranked, nil
	}), nil
}

// NewSample draws count objects of dataset uniformly at random in one pass.
// A non-zero seed makes the draw reproducible; unique skips objects whose
// locator was already drawn.
func NewSample(params Params) (Operation, error) {
	dataset, err := params.RequiredString("dataset")
	if err != nil {
		return nil, err
	}
	count, err := params.PositiveInt("count", defaultK)
	if err != nil {
		return nil, err
	}
	seed, err := params.Int("seed", 0)
	if err != nil {
		return nil, err
	}
	unique, err := params.Bool("unique", true)
	if err != nil {
		return nil, err
	}
	return OperationFunc(func(ctx context.Context, source store.Store) (Ranked, error) {
		rnd := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		if seed != 0 {
			rnd = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
		}
		var readErr error
		objects := func(yield func(object.Object) bool) {
			for v, err := range source.Objects(ctx, dataset) {
				if err != nil {
					readErr = err
					return
				}
				if !yield(v) {
					return
				}
			}
		}
		var equal func(a, b object.Object) bool
		if unique {
			equal = object.Equal
		}
		drawn := sample.FromSeq(rnd, objects, count, equal)
		if readErr != nil {
			return nil, readErr
		}
		result, err := rank.New(count, rank.Unlimited)
		if err != nil {
			return nil, err
		}
		for _, obj := range drawn {
			if _, err := result.Add(rank.NewItem(obj, 0)); err != nil {
				return nil, err
			}
		}
		return result, nil
	}), nil
}

// parsePairs parses "name:value,name:value"; a missing value is def.
func parsePairs(params Params, name string, def float64) ([]string, []float64, error) {
	var names []string
	var values []float64
	for _, field := range strings.Split(params[name], ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		key, value, found := strings.Cut(field, ":")
		v := def
		if found {
			f, err := Params{name: value}.Float(name, float32(def))
			if err != nil {
				return nil, nil, err
			}
			v = float64(f)
		}
		names = append(names, strings.TrimSpace(key))
		values = append(values, v)
	}
	return names, values, nil
}

// NewKeywords reduces keyword observations ("text:confidence,...") to the n
// best keywords under criterion (frequency, confidence or boosted). Items
// are ordered by descending score.
func NewKeywords(params Params) (Operation, error) {
	texts, confidences, err := parsePairs(params, "observations", 1)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: observations is required", ErrInvalidParam)
	}
	boostTexts, boostValues, err := parsePairs(params, "boosts", 1)
	if err != nil {
		return nil, err
	}
	n, err := params.PositiveInt("n", defaultK)
	if err != nil {
		return nil, err
	}
	criterion, err := keyword.ParseCriterion(params.String("criterion", ""))
	if err != nil {
		return nil, fmt.Errorf("%w: criterion: %v", ErrInvalidParam, err)
	}
	boosts := make(map[string]float64, len(boostTexts))
	for i, text := range boostTexts {
		boosts[text] = boostValues[i]
	}
	return OperationFunc(func(context.Context, store.Store) (Ranked, error) {
		reducer := keyword.NewReducer(boosts)
		for i, text := range texts {
			reducer.Observe(text, confidences[i])
		}
		top, err := reducer.Top(n, criterion)
		if err != nil {
			return nil, err
		}
		result, err := rank.New(max(len(top), 1), rank.Unlimited, rank.WithComparator(rank.Descending))
		if err != nil {
			return nil, err
		}
		for _, k := range top {
			if _, err := result.Add(rank.NewItem(k, float32(k.Score(criterion)))); err != nil {
				return nil, err
			}
		}
		return result, nil
	}), nil
}

// NewSequences ranks comma separated candidate strings by alignment cost to
// query, dropping duplicates.
func NewSequences(params Params) (Operation, error) {
	query, err := params.RequiredString("query")
	if err != nil {
		return nil, err
	}
	list, err := params.RequiredString("candidates")
	if err != nil {
		return nil, err
	}
	k, err := params.PositiveInt("k", defaultK)
	if err != nil {
		return nil, err
	}
	mismatch, err := params.Float("mismatch", align.Levenshtein.Mismatch)
	if err != nil {
		return nil, err
	}
	gap, err := params.Float("gap", align.Levenshtein.GapCost)
	if err != nil {
		return nil, err
	}
	model := align.Simple{Mismatch: mismatch, GapCost: gap}
	var candidates []object.Object
	for _, text := range strings.Split(list, ",") {
		if text = strings.TrimSpace(text); text != "" {
			candidates = append(candidates, object.NewSequence(text, text))
		}
	}
	return OperationFunc(func(context.Context, store.Store) (Ranked, error) {
		result, err := rank.New(1, k, rank.WithoutDuplicates(nil))
		if err != nil {
			return nil, err
		}
		source := func(yield func(object.Object) bool) {
			for _, c := range candidates {
				if !yield(c) {
					return
				}
			}
		}
		if _, err := iterate.Collect(result, iterate.Ranked(source, object.NewSequence("", query), align.Distance(model))); err != nil {
			return nil, err
		}
		return result, nil
	}), nil
}
