/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package admin exposes a read-only HTTP introspection surface over a running
// EasyServer: the live channel table and a handful of aggregate counters.
// It is additive tooling, never part of the wire protocol, and every handler
// only ever calls EasyServer.Channels/Stats, which snapshot state under the
// IoContext mutex and return immediately - an admin request never blocks a
// reactor goroutine.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ginctx "github.com/yiyuanzhong/flinter-sub000/context/gin"
	"github.com/yiyuanzhong/flinter-sub000/linkage"
	liblog "github.com/yiyuanzhong/flinter-sub000/logger"
)

// Engine is the subset of EasyServer the admin handlers depend on, so tests
// can supply a fake without spinning up real sockets.
type Engine interface {
	Channels() []linkage.ChannelSnapshot
	Stats() linkage.Stats
}

// Register mounts the introspection routes under router, typically a
// *gin.Engine or a *gin.RouterGroup carved out with router.Group("/admin").
// log, when non-nil, is wrapped into a GinTonic context for each request so
// handlers log through the same Logger the owning EasyServer uses; a nil log
// is fine and simply skips the per-request log line.
func Register(router gin.IRoutes, eng Engine, log liblog.FuncLog) {
	router.GET("/channels", func(c *gin.Context) {
		gtx := ginctx.New(c, log)
		channels := eng.Channels()
		gtx.Set("channel_count", len(channels))
		if log != nil {
			log().Info("admin: listed channels", nil, gtx.GetInt("channel_count"))
		}
		c.JSON(http.StatusOK, gin.H{"channels": channels})
	})
	router.GET("/stats", func(c *gin.Context) {
		gtx := ginctx.New(c, log)
		stats := eng.Stats()
		gtx.Set("reactors", stats.Reactors)
		if log != nil {
			log().Info("admin: reported stats", stats)
		}
		c.JSON(http.StatusOK, stats)
	})
}

// NewServer builds a standalone gin engine with the introspection routes
// already registered, for callers that want a dedicated admin listener
// instead of folding these routes into an existing gin.Engine.
func NewServer(eng Engine, log liblog.FuncLog) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	Register(r, eng, log)
	return r
}
