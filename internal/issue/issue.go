// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	LaunchFileNotFoundId Id = iota + 1
	MalformedArgumentId
	UnsupportedFormatId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also:\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	launchFileNotFoundIssue = &Issue{
		id: LaunchFileNotFoundId,
		mdMsg: `
# Launch file not found!

The first positional argument must name an existing launch file.

## Things you can try:
- Check the path for typos; relative paths are resolved from the current directory
- Pass launch arguments after the file, not before it:
~~~
$ launchdump robot.launch.xml use_sim_time:=true
~~~`,
		extLinks: []HttpLink{"https://docs.ros.org/en/rolling/Tutorials/Intermediate/Launch/Creating-Launch-Files.html"},
	}

	malformedArgumentIssue = &Issue{
		id: MalformedArgumentId,
		mdMsg: `
# Malformed launch argument!

Every argument after the launch file must look like ` + "`name:=value`" + `.

## Rules:
- The name must not be empty (` + "`:=value`" + ` is rejected)
- The value may be empty only if the token contains ` + "`:=`" + ` more than once
- Only the first ` + "`:=`" + ` separates the name from the value
- When a name is repeated, the last value wins

## Example:
~~~
$ launchdump bringup.launch.yaml robot:=r2 namespace:=/r2
~~~`,
		extLinks: []HttpLink{"https://docs.ros.org/en/rolling/How-To-Guides/Launch-file-different-formats.html"},
	}

	unsupportedFormatIssue = &Issue{
		id: UnsupportedFormatId,
		mdMsg: `
# Unsupported launch file format!

launchdump reads declarative launch files only.

## Supported extensions:
- ` + "`.xml`" + `
- ` + "`.yaml`" + ` / ` + "`.yml`" + `
- ` + "`.toml`" + `
- ` + "`.cue`" + `

## Python launch files
Python launch files cannot be evaluated. Port the description to XML or YAML.`,
		extLinks: []HttpLink{"https://docs.ros.org/en/rolling/How-To-Guides/Launch-file-different-formats.html"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file is not valid CUE or does not match the schema.

## Search locations (first match wins):
1. The file given with ` + "`--config`" + `
2. ` + "`$XDG_CONFIG_HOME/launchdump/config.cue`" + `
3. ` + "`./config.cue`" + `

## Example configuration:
~~~cue
lookup: {
	enabled: true
	extra_paths: ["/opt/ros/rolling/bin"]
}
ui: log_level: "warn"
frontend: max_file_size: 5242880
~~~

Environment variables such as ` + "`LAUNCHDUMP_UI_LOG_LEVEL`" + ` override file values.`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	issues = map[Id]*Issue{
		launchFileNotFoundIssue.Id(): launchFileNotFoundIssue,
		malformedArgumentIssue.Id():  malformedArgumentIssue,
		unsupportedFormatIssue.Id():  unsupportedFormatIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
	}
)

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
