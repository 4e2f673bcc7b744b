package rules

import "slices"

// Chain is an ordered list of steps. Steps run in the order they were
// appended and the first one that acts ends the turn.
//
// Chains are persistent: Append, Then, When and Named return a new chain and
// leave the receiver untouched, so a shared prefix can seed several chains.
type Chain struct {
	steps []Step
}

// Create starts a chain with a single T step. Variant defaults are applied
// before the configure callbacks run.
func Create[T Strategy](configure ...func(*T)) *Chain {
	return Append[T](nil, configure...)
}

// Append returns c extended by a T step. A nil c starts a new chain.
func Append[T Strategy](c *Chain, configure ...func(*T)) *Chain {
	s := defaulted[T]()
	for _, fn := range configure {
		if fn == nil {
			panic("rules: nil configure callback")
		}
		fn(&s)
	}
	return c.Then(s)
}

// Then returns c extended by s as given; no defaults are applied.
func (c *Chain) Then(s Strategy) *Chain {
	if s == nil {
		panic("rules: nil strategy")
	}
	return &Chain{steps: append(slices.Clip(c.Steps()), Step{Name: string(s.Kind()), Strategy: s})}
}

// When guards the tail step with an expr condition evaluated against RuleEnv.
func (c *Chain) When(src string) *Chain {
	return c.withTail(func(st *Step) { st.ConditionSrc = src })
}

// Named overrides the log name of the tail step.
func (c *Chain) Named(name string) *Chain {
	return c.withTail(func(st *Step) { st.Name = name })
}

func (c *Chain) withTail(fn func(*Step)) *Chain {
	steps := slices.Clone(c.Steps())
	if len(steps) == 0 {
		panic("rules: chain has no steps")
	}
	fn(&steps[len(steps)-1])
	return &Chain{steps: steps}
}

// Len returns the number of steps; a nil chain has none.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.steps)
}

// Steps returns the steps in evaluation order. The slice must not be modified.
func (c *Chain) Steps() []Step {
	if c == nil {
		return nil
	}
	return c.steps
}

// Names returns the step names in evaluation order.
func (c *Chain) Names() []string {
	names := make([]string, 0, c.Len())
	for _, st := range c.Steps() {
		names = append(names, st.Name)
	}
	return names
}
