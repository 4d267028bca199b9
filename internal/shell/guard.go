package shell

// Page identifies a renderable page variant.
type Page string

const (
	PageHomeAnonymous     Page = "home"
	PageHomeAuthenticated Page = "home-authenticated"
	PageRegister          Page = "register"
	PageMyProfile         Page = "my-profile"
	PageAddProducts       Page = "add-products"
	PageAllProducts       Page = "all-products"
	PageNotFound          Page = "not-found"
)

// Routes the guard recognizes.
const (
	PathHome        = "/"
	PathRegister    = "/register"
	PathMyProfile   = "/my-profile"
	PathAddProducts = "/add-products"
	PathAllProducts = "/all-products"
)

// Decision is the guard's verdict for one (state, path) pair: either render a
// page or redirect elsewhere, never both, never neither.
type Decision struct {
	Page     Page
	Redirect string
}

func render(p Page) Decision      { return Decision{Page: p} }
func redirect(to string) Decision { return Decision{Redirect: to} }

// Evaluate maps a navigation state and requested path to a decision. Total by
// construction: every recognized path handles all three states and anything
// else is a terminal not-found render. Callers must not invoke it before the
// machine is ready; StateUnresolved is treated as anonymous here only so the
// function stays total, not as a supported input.
func Evaluate(state State, path string) Decision {
	switch path {
	case PathHome:
		switch state {
		case StateComplete:
			return render(PageHomeAuthenticated)
		case StateIncomplete:
			return redirect(PathRegister)
		default:
			return render(PageHomeAnonymous)
		}
	case PathRegister:
		if state == StateIncomplete {
			return render(PageRegister)
		}
		return redirect(PathHome)
	case PathMyProfile:
		if state == StateComplete {
			return render(PageMyProfile)
		}
		return redirect(PathHome)
	case PathAddProducts:
		if state == StateComplete {
			return render(PageAddProducts)
		}
		return redirect(PathHome)
	case PathAllProducts:
		// Public catalogue, open to every state.
		return render(PageAllProducts)
	default:
		return render(PageNotFound)
	}
}
