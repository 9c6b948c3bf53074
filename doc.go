/*
Package pagecraft is the editing core of a visual drag-and-drop page builder.

A page is a tree of component nodes built from a JSON/YAML schema. Every
node carries a property bag declared by its component prototype, and every
edit is recorded into an undo history that folds quick bursts of changes
into one step. A drag engine turns pointer gestures into placement
locations over the rendered rectangles, and an exchange keeps track of
which node is selected, hovered, dragged or being dropped into.

The rendering bridge, panel chrome and hotkeys are outside the core. The
host supplies rectangles through a node.Bridge and forwards pointer events
to the drag engine.

# Usage

The Editor ties the pieces together and persists pages through a
ports.PageStore:

	ed, err := pagecraft.New(
		pagecraft.WithPrototypes(prototype.Declare(prototype.Definition{
			ComponentName: "Page", Container: true,
		})),
		pagecraft.WithStore(file.New("./pages")),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer ed.Close()

	p, err := ed.Open(ctx, "home")
	if err != nil {
		log.Fatal(err)
	}
	p.Root().InsertAt(&schema.ComponentSchema{ComponentName: "Text"}, 0)
	p.History().Back()

	if err := ed.Save(ctx, "home"); err != nil {
		log.Fatal(err)
	}

# Packages

  - pkg/node, pkg/prop: the component tree and its properties.
  - pkg/history: undo/redo with time-window coalescing.
  - pkg/dragengine, pkg/exchange: gestures and interaction roles.
  - pkg/page: pages, their params and addons, and the page collection.
  - pkg/ports and pkg/adapters: page storage.
  - pkg/adapters/http, pkg/adapters/mcp: remote editing surfaces.
*/
package pagecraft
