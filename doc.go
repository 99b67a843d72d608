// Package modpack reads game mod pack containers, reports where mods
// overwrite each other, and prepares a game launch.
//
// A [Manager] wires the container reader, the optional decoded-pack cache,
// the library scanner and the patch synthesizer together. For low-level
// container access without library management, use the [core] subpackage.
//
// # Quick Start
//
// Scan the mod directories and list collisions:
//
//	m, err := modpack.NewManager(modpack.WithCacheDir("/var/cache/modpack"))
//	if err != nil {
//	    return err
//	}
//	res, err := m.ScanDirs(ctx, dataDir, contentDir)
//	if err != nil {
//	    return err
//	}
//	for _, c := range res.Snapshot.Tables {
//	    fmt.Println(c.FirstPack, c.SecondPack, c.Key, c.Value)
//	}
//
// # Watching
//
// [Manager.Watch] keeps the library current while packs are installed and
// removed, pushing a [library.Event] for every change.
//
// # Launching
//
// [Manager.PrepareLaunch] writes the session patch container when a toggle
// is enabled and renders the mod-list script the game reads on startup.
package modpack
