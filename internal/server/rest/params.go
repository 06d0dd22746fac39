package rest

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

type pageQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}
