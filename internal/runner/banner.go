package runner

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/peerscan/pkg/version"
)

const banner = `
   ___  ___ ___ ____ ___ _______ ____ 
  / _ \/ -_) -_) __/(_-</ __/ _ '/ _ \
 / .__/\__/\__/_/  /___/\__/\_,_/_//_/
/_/
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\t%s\n\n", version.GetVersion())
}
