package momitroll

type ActionConfigurator func(a *Action)

type Action struct {
	steps       int
	onlyPending bool
}

// WithSteps limits how many migrations an up run applies
func WithSteps(steps int) ActionConfigurator {
	return func(a *Action) {
		a.steps = steps
	}
}

// OnlyPending skips migrations that are already applied instead of running them again
func OnlyPending() ActionConfigurator {
	return func(a *Action) {
		a.onlyPending = true
	}
}

func CreateConfigurators(steps int, onlyPending bool) []ActionConfigurator {
	var configurators []ActionConfigurator
	if steps > 0 {
		configurators = append(configurators, WithSteps(steps))
	}

	if onlyPending {
		configurators = append(configurators, OnlyPending())
	}

	return configurators
}
