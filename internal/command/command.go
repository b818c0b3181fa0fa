// Package command defines the bot command framework: the Command interface,
// invocation contexts, a registry and middleware wrappers. Concrete commands
// live in subpackages and register themselves from main.
package command

import (
	"github.com/bwmarrin/discordgo"

	"woot/internal/storage"
)

type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Group() string
	Category() string
	RequireAdmin() bool
	Run(ctx interface{}) error
}

// SlashProvider is implemented by commands that expose a slash definition.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// ComponentHandler is implemented by commands that own message components.
// Custom IDs are namespaced "<command>:<action>:<args...>".
type ComponentHandler interface {
	Component(ctx *ComponentContext) error
}

type SlashContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

type ComponentContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
	// CustomID split on ":", with the command name already stripped.
	Args []string
}
