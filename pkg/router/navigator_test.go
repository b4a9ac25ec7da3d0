package router

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNavigatorSupersedesPreviousActivation(t *testing.T) {
	slow := newGatedModule("pages/post", textView("post"))
	r := MustNew([]Route{
		{Path: "/posts/:id", Element: slow.element()},
		{Path: "/about", Element: Static(textView("about"))},
	})
	nav := r.NewNavigator()

	first := nav.Navigate(context.Background(), "/posts/1")
	second := nav.Navigate(context.Background(), "/about")

	if first.Token() >= second.Token() {
		t.Errorf("tokens = %d, %d; want increasing", first.Token(), second.Token())
	}
	if first.Context().Err() == nil {
		t.Error("superseded activation context should be cancelled")
	}

	res := waitResult(t, second)
	if res.Tree.TextContent() != "about" {
		t.Errorf("second tree = %q", res.Tree.TextContent())
	}

	close(slow.release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := first.Wait(ctx); !errors.Is(err, ErrSuperseded) {
		t.Errorf("first.Wait() error = %v, want ErrSuperseded", err)
	}
	if !first.Superseded() || second.Superseded() {
		t.Error("Superseded() should be true only for the first activation")
	}
}

func TestNavigatorSharedFetchSurvivesSupersede(t *testing.T) {
	mod := newGatedModule("pages/post", textView("post"))
	r := MustNew([]Route{{Path: "/posts/:id", Element: mod.element()}})
	nav := r.NewNavigator()

	first := nav.Navigate(context.Background(), "/posts/1")
	second := nav.Navigate(context.Background(), "/posts/2")
	close(mod.release)

	res := waitResult(t, second)
	if res.Params["id"] != "2" || res.Tree.TextContent() != "post" {
		t.Errorf("second result = %+v", res)
	}
	<-first.Done()
	if n := mod.module.Loads(); n != 1 {
		t.Errorf("module loaded %d times, want 1", n)
	}
}

func TestNavigatorClose(t *testing.T) {
	r := MustNew(blogTable())
	nav := r.NewNavigator()

	a := nav.Navigate(context.Background(), "/")
	nav.Close()
	if nav.IsCurrent(a.Token()) {
		t.Error("no activation should be current after Close")
	}
	b := nav.Navigate(context.Background(), "/posts")
	if b.Context().Err() == nil {
		t.Error("activations after Close should start cancelled")
	}
}
