package app

import (
	"github.com/specialistvlad/sagago/adaptors/httpfile"
	"github.com/specialistvlad/sagago/adaptors/local"
	"github.com/specialistvlad/sagago/adaptors/s3"
	"github.com/specialistvlad/sagago/adaptors/socketio"
	"github.com/specialistvlad/sagago/internal/adaptor"
)

// coreModules returns the modules compiled into the binary, in registration
// order. s3 precedes http so presigned URLs reach it first.
func coreModules() []adaptor.Module {
	return []adaptor.Module{
		&s3.Module{},
		&httpfile.Module{},
		&socketio.Module{},
		&local.Module{},
	}
}
