// Package views renders the server-side HTML pages.
package views

import (
	"embed"
	"io/fs"
	"net/http"

	"shortlink/internal/models"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// Layout wraps every page; it renders the page body through {{embed}}.
const Layout = "base"

// Page names accepted by Render.
const (
	Home      = "home"
	Register  = "register"
	Login     = "login"
	Shorten   = "shorten"
	ShortURLs = "short_urls"
	Error     = "error"
)

// Page is the data every template is executed with.
type Page struct {
	LoggedIn bool
	Name     string
	Error    string

	// login / register
	Next             string
	Username         string
	FormName         string
	UsernameInvalid  string
	UsernameExists   string
	PasswordMismatch bool

	// shorten / list
	OriginalURL string
	ShortURL    string
	Existing    bool
	URLs        []models.ShortURLPair

	// error page
	Status  int
	Message string
}

// New returns a fiber view engine over the embedded templates.
func New() *html.Engine {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}
