package runner

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netmon-agent/pkg/version"
)

const banner = `
             __                                            __ 
  ___  ___  / /___ _  ___  ___  ____ ____ ____ ___  ___  / /_
 / _ \/ -_)/ __/  ' \/ _ \/ _ \/___// _ '/ _ '/ -_)/ _ \/ __/
/_//_/\__/ \__/_/_/_/\___/_//_/     \_,_/\_, /\__//_//_/\__/ 
                                        /___/                
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\tnetmon-agent %s\n\n", version.GetVersion())
}
