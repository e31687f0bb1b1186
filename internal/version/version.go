package version

// переопределяется при сборке:
// go build -ldflags "-X github.com/kitbuilder587/books-mcp/internal/version.version=v0.2.0"
var version = "0.1.1"

func Get() string {
	return version
}
