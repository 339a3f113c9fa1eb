package modules

import "github.com/gin-gonic/gin"

// StaticModule serves uploaded files from the local upload directory.
type StaticModule struct {
	Prefix string
	Root   string
}

func NewStaticModule(prefix, root string) *StaticModule {
	return &StaticModule{Prefix: prefix, Root: root}
}

func (m *StaticModule) Register(rg *gin.RouterGroup) {
	rg.Static(m.Prefix, m.Root)
}
