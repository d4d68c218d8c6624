package controller

import (
	"logicfy_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// pathID 解析路径中的正整数 ID，失败时直接写出 400
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func queryLimit(ctx *gin.Context) int {
	return util.ParseLimit(ctx.Query("limit"), defaultListLimit, maxListLimit)
}
