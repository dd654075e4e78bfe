package optimize

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"

	eaopt "github.com/MaxHalford/eaopt"
	"github.com/c-bata/goptuna"
	"github.com/c-bata/goptuna/tpe"
	"golang.org/x/sync/errgroup"

	"github.com/tantralabs/mantra/models"
)

// Optimize runs a bayesian parameter search over the given objective,
// fanning trials out across worker goroutines.
func Optimize(objective func(goptuna.Trial) (float64, error), episodes int) {
	study, err := goptuna.CreateStudy(
		"mantra-mm",
		goptuna.StudyOptionSampler(tpe.NewSampler()),
		goptuna.StudyOptionSetDirection(goptuna.StudyDirectionMaximize),
	)

	if err != nil {
		log.Fatal(err)
	}
	//Multithread
	eg, ctx := errgroup.WithContext(context.Background())
	study.WithContext(ctx)
	for i := 0; i < 12; i++ {
		eg.Go(func() error {
			return study.Optimize(objective, episodes)
		})
	}
	if err := eg.Wait(); err != nil {
		log.Fatal(err)
	}

	// Print the best evaluation value and the parameters.
	v, _ := study.GetBestValue()
	p, _ := study.GetBestParams()
	log.Printf("Best evaluation value=%f", v)
	log.Println(p)
}

// EAOptimize minimizes the objective with an evolution strategy seeded
// for repeatable runs.
func EAOptimize(Evaluate func([]float64) float64, paramsDomain []float64) {
	var ga, err = eaopt.NewOES(1000, 30, 10, 0.05, false, nil)
	if err != nil {
		fmt.Println(err)
		return
	}

	// Fix random number generation
	ga.GA.RNG = rand.New(rand.NewSource(42))

	// Run minimization
	_, y, err := ga.Minimize(Evaluate, paramsDomain)
	if err != nil {
		fmt.Println(err)
		return
	}
	var best = ga.GA.HallOfFame[0]
	log.Println(best)
	fmt.Printf("Found minimum of %.5f\n", y)
}

// DiffEvoOptimize minimizes the objective with differential evolution.
// min and max bound every dimension; ConstrainSearchParameters clamps
// each parameter back onto its own domain.
func DiffEvoOptimize(Evaluate func([]float64) float64, min float64, max float64, dims uint) {
	var ga, err = eaopt.NewDiffEvo(40, 100, min, max, 0.5, 0.2, false, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	ga.GA.RNG = rand.New(rand.NewSource(13))
	// Run minimization
	_, y, err := ga.Minimize(Evaluate, dims)
	if err != nil {
		fmt.Println(err)
		return
	}
	var best = ga.GA.HallOfFame[0]
	log.Println(best)
	fmt.Printf("Found minimum of %.5f\n", y)
}

// SessionObjective adapts a session scoring func into a goptuna objective,
// suggesting one value per search domain.
func SessionObjective(searchParameters map[string]models.SearchParameter, run func(map[string]models.SearchParameter) float64) func(goptuna.Trial) (float64, error) {
	return func(trial goptuna.Trial) (float64, error) {
		sp := make(map[string]models.SearchParameter)
		for _, key := range sortedParameterKeys(searchParameters) {
			p := searchParameters[key]
			suggested, err := trial.SuggestUniform(key, p.GetMin(), p.GetMax())
			if err != nil {
				return 0, err
			}
			sp[key] = p.SetValue(suggested)
		}
		return run(sp), nil
	}
}

// ConstrainSearchParameters maps an optimizer vector back onto the search
// domains. Keys are walked in sorted order so the vector layout matches
// GetMinMaxSearchDomain across calls.
func ConstrainSearchParameters(searchParameters map[string]models.SearchParameter, x []float64) (sp map[string]models.SearchParameter) {
	sp = make(map[string]models.SearchParameter)
	for i, key := range sortedParameterKeys(searchParameters) {
		sp[key] = searchParameters[key].SetValue(x[i])
	}
	return sp
}

// GetMinMaxSearchDomain returns bounds wide enough to cover every search
// domain, for optimizers that bound all dimensions at once.
func GetMinMaxSearchDomain(searchParameters map[string]models.SearchParameter) (min float64, max float64) {
	for _, key := range sortedParameterKeys(searchParameters) {
		p := searchParameters[key]
		if p.GetMin() < min {
			min = p.GetMin()
		}
		if p.GetMax() > max {
			max = p.GetMax()
		}
	}
	return
}

func sortedParameterKeys(searchParameters map[string]models.SearchParameter) []string {
	keys := make([]string, 0, len(searchParameters))
	for key := range searchParameters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
