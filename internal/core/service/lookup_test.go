package service_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"devdash/internal/core/domain"
	"devdash/internal/core/service"
)

const testDebounce = 30 * time.Millisecond

func newLookup(t *testing.T, provider *fakeProvider) *service.WeatherLookup {
	lookup := service.NewWeatherLookup(service.NewWeatherService(provider, nil, nil, 0), testDebounce)
	t.Cleanup(lookup.Close)
	return lookup
}

func TestWeatherLookup_StartsIdle(t *testing.T) {
	RegisterTestingT(t)

	lookup := newLookup(t, newFakeProvider())

	Expect(lookup.State()).To(Equal(domain.IdlePanel()))
}

func TestWeatherLookup_Search(t *testing.T) {
	RegisterTestingT(t)

	lookup := newLookup(t, newFakeProvider())

	panel := lookup.Search(context.Background(), "Lima")

	Expect(panel.State).To(Equal(domain.PanelReady))
	Expect(panel.Report.City).To(Equal("Lima"))
	Expect(lookup.State()).To(Equal(panel))
}

func TestWeatherLookup_SearchFailure(t *testing.T) {
	RegisterTestingT(t)

	lookup := newLookup(t, newFakeProvider())

	panel := lookup.Search(context.Background(), "Atlantis")

	Expect(panel.State).To(Equal(domain.PanelFailed))
	Expect(panel.Message).To(Equal(domain.MessageWeatherUnavailable))
}

func TestWeatherLookup_InputDebounces(t *testing.T) {
	RegisterTestingT(t)

	provider := newFakeProvider()
	lookup := newLookup(t, provider)

	lookup.Input("L")
	lookup.Input("Li")
	lookup.Input("Lim")
	lookup.Input("Lima")

	Expect(provider.Calls()).To(BeEmpty())

	Eventually(func() domain.PanelState { return lookup.State().State }).Should(Equal(domain.PanelReady))
	Expect(provider.Calls()).To(Equal([]string{"Lima"}))
	Expect(lookup.State().City).To(Equal("Lima"))
}

func TestWeatherLookup_BlankInputResets(t *testing.T) {
	RegisterTestingT(t)

	provider := newFakeProvider()
	lookup := newLookup(t, provider)

	lookup.Search(context.Background(), "Lima")
	lookup.Input("Oslo")
	lookup.Input("   ")

	Expect(lookup.State()).To(Equal(domain.IdlePanel()))

	Consistently(provider.Calls, 3*testDebounce).Should(Equal([]string{"Lima"}))
}

func TestWeatherLookup_SearchCancelsPendingInput(t *testing.T) {
	RegisterTestingT(t)

	provider := newFakeProvider()
	lookup := newLookup(t, provider)

	lookup.Input("Oslo")
	panel := lookup.Search(context.Background(), "London")

	Expect(panel.Report.City).To(Equal("London"))

	Consistently(provider.Calls, 3*testDebounce).Should(Equal([]string{"London"}))
	Expect(lookup.State().City).To(Equal("London"))
}

func TestWeatherLookup_NewerFetchWins(t *testing.T) {
	RegisterTestingT(t)

	provider := newFakeProvider()
	release := provider.Block("Oslo")
	defer close(release)

	lookup := newLookup(t, provider)

	slow := make(chan domain.WeatherPanel, 1)
	go func() {
		slow <- lookup.Search(context.Background(), "Oslo")
	}()

	Eventually(provider.Calls).Should(ContainElement("Oslo"))
	Expect(lookup.State().State).To(Equal(domain.PanelLoading))
	Expect(lookup.State().Message).To(Equal(domain.MessageLoading))

	panel := lookup.Search(context.Background(), "Lima")

	Expect(panel.Report.City).To(Equal("Lima"))

	// the superseded fetch was canceled and its result dropped
	Eventually(slow).Should(Receive(WithTransform(func(p domain.WeatherPanel) string { return p.City }, Equal("Lima"))))
	Expect(lookup.State().Report.City).To(Equal("Lima"))
}

func TestWeatherLookup_Changes(t *testing.T) {
	RegisterTestingT(t)

	lookup := newLookup(t, newFakeProvider())

	changed := lookup.Changes()
	_, before := lookup.Snapshot()

	lookup.Input("Lima")

	Eventually(changed).Should(BeClosed())
	Eventually(func() domain.PanelState { return lookup.State().State }).Should(Equal(domain.PanelReady))

	_, after := lookup.Snapshot()
	Expect(after).To(BeNumerically(">", before))
}

func TestWeatherLookup_WaitReturnsOnNewerVersion(t *testing.T) {
	RegisterTestingT(t)

	lookup := newLookup(t, newFakeProvider())

	lookup.Search(context.Background(), "Lima")
	_, seen := lookup.Snapshot()

	// nothing changed since seen: the wait runs out with the same panel
	ctx, cancel := context.WithTimeout(context.Background(), 3*testDebounce)
	defer cancel()

	panel, version := lookup.Wait(ctx, seen)

	Expect(version).To(Equal(seen))
	Expect(panel.City).To(Equal("Lima"))

	// an older version returns right away
	panel, version = lookup.Wait(context.Background(), seen-1)

	Expect(version).To(Equal(seen))
	Expect(panel.State).To(Equal(domain.PanelReady))
}

func TestWeatherLookup_WaitWakesEveryWaiter(t *testing.T) {
	RegisterTestingT(t)

	lookup := newLookup(t, newFakeProvider())
	_, seen := lookup.Snapshot()

	const waiters = 3
	done := make(chan domain.WeatherPanel, waiters)

	for i := 0; i < waiters; i++ {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			var panel domain.WeatherPanel
			version := seen

			for panel.State != domain.PanelReady && ctx.Err() == nil {
				panel, version = lookup.Wait(ctx, version)
			}

			done <- panel
		}()
	}

	lookup.Input("Lima")

	for i := 0; i < waiters; i++ {
		Eventually(done).Should(Receive(WithTransform(func(p domain.WeatherPanel) domain.PanelState { return p.State }, Equal(domain.PanelReady))))
	}
}

func TestWeatherLookup_Close(t *testing.T) {
	RegisterTestingT(t)

	provider := newFakeProvider()
	lookup := newLookup(t, provider)

	lookup.Input("Lima")
	lookup.Close()

	Consistently(provider.Calls, 3*testDebounce).Should(BeEmpty())

	lookup.Input("Oslo")
	Expect(lookup.Search(context.Background(), "Oslo")).To(Equal(domain.IdlePanel()))
}

func TestLookupRegistry(t *testing.T) {
	RegisterTestingT(t)

	registry := service.NewLookupRegistry(service.NewWeatherService(newFakeProvider(), nil, nil, 0), testDebounce, time.Minute)
	defer registry.Close()

	id, lookup := registry.Create()

	found, err := registry.Get(id)
	Expect(err).To(BeNil())
	Expect(found).To(BeIdenticalTo(lookup))
	Expect(registry.Len()).To(Equal(1))

	registry.Remove(id)

	_, err = registry.Get(id)
	Expect(err).To(MatchError(domain.ErrSessionNotFound))
	Expect(lookup.Closed()).To(BeTrue())

	id, lookup = registry.Create()
	lookup.Close()

	_, err = registry.Get(id)
	Expect(err).To(MatchError(domain.ErrSessionNotFound))
	Expect(registry.Len()).To(BeZero())
}

func TestLookupRegistry_Expires(t *testing.T) {
	RegisterTestingT(t)

	provider := newFakeProvider()
	registry := service.NewLookupRegistry(service.NewWeatherService(provider, nil, nil, 0), testDebounce, 40*time.Millisecond)
	defer registry.Close()

	id, lookup := registry.Create()

	// Len does not touch the session, so it is free to expire
	Eventually(registry.Len).Should(BeZero())
	Eventually(lookup.Closed).Should(BeTrue())

	_, err := registry.Get(id)
	Expect(err).To(MatchError(domain.ErrSessionNotFound))

	// eviction closed the lookup: it ignores further searches
	Expect(lookup.Search(context.Background(), "Lima")).To(Equal(domain.IdlePanel()))
	Expect(provider.Calls()).To(BeEmpty())
}
