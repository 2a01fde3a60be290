package a

import "context"

type Person struct{ NumeroH string }

type PersonDirectory interface {
	FindPerson(ctx context.Context, numeroH string) (*Person, error)
	FindPeople(ctx context.Context, numeroHs []string) ([]*Person, error)
}

type LinkStore interface {
	GetLink(ctx context.Context, id string) error
}

func bad(ctx context.Context, ids []string, people PersonDirectory, links LinkStore) {
	for _, id := range ids {
		people.FindPerson(ctx, id) // want "FindPerson called inside loop - use FindPeople"
	}
	for i := 0; i < len(ids); i++ {
		links.GetLink(ctx, ids[i]) // want "GetLink called inside loop - load once before the loop"
	}
}

func good(ctx context.Context, ids []string, people PersonDirectory) {
	people.FindPeople(ctx, ids)

	var deferred []func()
	for _, id := range ids {
		deferred = append(deferred, func() { people.FindPerson(ctx, id) })
	}
	_ = deferred
}
