package ledger

import (
	"errors"
	"sync"
	"testing"

	"github.com/signalsfoundry/factory-simulator/model"
)

func TestAddResourceAndCount(t *testing.T) {
	l := New(model.ItemStack{Kind: model.ItemCopper, Count: 3})
	l.AddResource(model.ItemCopper, 2)
	l.AddResource(model.ItemIron, 0)
	if got := l.Count(model.ItemCopper); got != 5 {
		t.Fatalf("Count(copper) = %d, want 5", got)
	}
	if got := l.Count(model.ItemIron); got != 0 {
		t.Fatalf("Count(iron) = %d, want 0", got)
	}
}

func TestPayIsAllOrNothing(t *testing.T) {
	l := New(
		model.ItemStack{Kind: model.ItemCopper, Count: 10},
		model.ItemStack{Kind: model.ItemIron, Count: 2},
	)
	cost := []model.ItemStack{{Kind: model.ItemCopper, Count: 10}, {Kind: model.ItemIron, Count: 5}}
	if l.CanAfford(cost) {
		t.Fatalf("CanAfford should be false")
	}
	if err := l.Pay(cost); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("Pay error = %v, want ErrInsufficient", err)
	}
	if l.Count(model.ItemCopper) != 10 || l.Count(model.ItemIron) != 2 {
		t.Fatalf("failed payment changed the balance: %v", l.Snapshot())
	}

	if err := l.Pay([]model.ItemStack{{Kind: model.ItemCopper, Count: 4}}); err != nil {
		t.Fatalf("Pay error: %v", err)
	}
	if l.Count(model.ItemCopper) != 6 {
		t.Fatalf("Count(copper) = %d, want 6", l.Count(model.ItemCopper))
	}
}

func TestCanAffordSumsRepeatedKinds(t *testing.T) {
	l := New(model.ItemStack{Kind: model.ItemCoal, Count: 3})
	cost := []model.ItemStack{{Kind: model.ItemCoal, Count: 2}, {Kind: model.ItemCoal, Count: 2}}
	if l.CanAfford(cost) {
		t.Fatalf("repeated kinds must be summed")
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	l := New()
	var got []Event
	unsub := l.Subscribe(func(e Event) { got = append(got, e) })

	l.AddResource(model.ItemCoal, 4)
	if err := l.Pay([]model.ItemStack{{Kind: model.ItemCoal, Count: 1}}); err != nil {
		t.Fatalf("Pay error: %v", err)
	}
	unsub()
	unsub()
	l.AddResource(model.ItemCoal, 1)

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Type != EventCredited || got[0].Balance != 4 {
		t.Fatalf("unexpected credit event: %+v", got[0])
	}
	if got[1].Type != EventDebited || got[1].Amount != 1 || got[1].Balance != 3 {
		t.Fatalf("unexpected debit event: %+v", got[1])
	}
}

func TestUnsubscribeKeepsOthers(t *testing.T) {
	l := New()
	var a, b int
	unsubA := l.Subscribe(func(Event) { a++ })
	l.Subscribe(func(Event) { b++ })
	unsubA()
	l.AddResource(model.ItemIron, 1)
	if a != 0 || b != 1 {
		t.Fatalf("a=%d b=%d, want 0 and 1", a, b)
	}
}

func TestConcurrentCredits(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.AddResource(model.ItemCopper, 1)
			}
		}()
	}
	wg.Wait()
	if l.Count(model.ItemCopper) != 800 {
		t.Fatalf("Count = %d, want 800", l.Count(model.ItemCopper))
	}
}
