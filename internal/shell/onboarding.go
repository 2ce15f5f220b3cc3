package shell

import (
	"sync"
	"time"
)

const (
	onboardingSlideCount     = 5
	onboardingTransitionTime = 300 * time.Millisecond
)

// Preferences are the selections collected across the onboarding slides.
type Preferences struct {
	Cuisines            []string
	NutritionCategories []string
}

// Onboarding is the one-shot slide sequence shown to first-time users.
// Finishing the last slide or skipping completes it; completion fires the
// callback exactly once.
type Onboarding struct {
	// TransitionDelay overrides the slide animation timing when set
	// before use. Zero means the default.
	TransitionDelay time.Duration

	mu            sync.Mutex
	slide         int
	transitioning bool
	timer         *time.Timer
	prefs         Preferences
	completed     bool
	onComplete    func(prefs Preferences)
}

// NewOnboarding creates an onboarding controller on the first slide.
func NewOnboarding(onComplete func(prefs Preferences)) *Onboarding {
	return &Onboarding{onComplete: onComplete}
}

// Slide returns the zero-based current slide index.
func (o *Onboarding) Slide() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.slide
}

// Transitioning reports whether a slide animation is in progress.
func (o *Onboarding) Transitioning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transitioning
}

// Next advances one slide; on the last slide it completes the sequence.
func (o *Onboarding) Next() {
	o.mu.Lock()
	if o.completed || o.transitioning {
		o.mu.Unlock()
		return
	}
	if o.slide >= onboardingSlideCount-1 {
		o.mu.Unlock()
		o.complete()
		return
	}
	o.startSlideLocked(o.slide + 1)
	o.mu.Unlock()
}

// Back returns one slide; no-op on the first slide.
func (o *Onboarding) Back() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.completed || o.transitioning || o.slide == 0 {
		return
	}
	o.startSlideLocked(o.slide - 1)
}

// Skip completes the sequence immediately from any slide.
func (o *Onboarding) Skip() {
	o.mu.Lock()
	if o.completed {
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()
	o.complete()
}

// ToggleCuisine adds or removes a cuisine from the collected preferences.
func (o *Onboarding) ToggleCuisine(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prefs.Cuisines = toggle(o.prefs.Cuisines, name)
}

// ToggleNutritionCategory adds or removes a nutrition category.
func (o *Onboarding) ToggleNutritionCategory(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prefs.NutritionCategories = toggle(o.prefs.NutritionCategories, name)
}

// Preferences returns a copy of the collected selections.
func (o *Onboarding) Preferences() Preferences {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Preferences{
		Cuisines:            append([]string(nil), o.prefs.Cuisines...),
		NutritionCategories: append([]string(nil), o.prefs.NutritionCategories...),
	}
}

// Close cancels a pending slide transition.
func (o *Onboarding) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.transitioning = false
}

func (o *Onboarding) startSlideLocked(target int) {
	o.transitioning = true
	delay := o.TransitionDelay
	if delay == 0 {
		delay = onboardingTransitionTime
	}
	o.timer = time.AfterFunc(delay, func() {
		o.mu.Lock()
		o.slide = target
		o.transitioning = false
		o.mu.Unlock()
	})
}

func (o *Onboarding) complete() {
	o.mu.Lock()
	if o.completed {
		o.mu.Unlock()
		return
	}
	o.completed = true
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	fn := o.onComplete
	prefs := Preferences{
		Cuisines:            append([]string(nil), o.prefs.Cuisines...),
		NutritionCategories: append([]string(nil), o.prefs.NutritionCategories...),
	}
	o.mu.Unlock()
	if fn != nil {
		fn(prefs)
	}
}

func toggle(list []string, name string) []string {
	for i, v := range list {
		if v == name {
			return append(list[:i], list[i+1:]...)
		}
	}
	return append(list, name)
}
