package view

import (
	"context"
	"io"

	"plantblog/pkg/store"
)

type Navbar struct {
	Store *store.Store
	Nav   Navigator
}

func (n *Navbar) Render(w io.Writer) error {
	st := n.Store.Snapshot()
	s := &screen{}
	if st.LoggedIn() {
		s.line("Plant Blog | Blog | %s | Log Out", st.CurrentUser.Username)
	} else {
		s.line("Plant Blog | Blog | Login")
	}
	return s.flush(w)
}

// Logout ends the session and returns to the home screen.
func (n *Navbar) Logout(ctx context.Context) {
	n.Store.Logout(ctx)
	n.Nav.Navigate(RouteHome)
}
