// Package docs 注册 Swagger 接口文档，内容与 controller 上的注解保持一致
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {"produces": ["application/json"], "tags": ["系统"], "summary": "健康检查", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/answers": {
            "get": {"security": [{"ApiKeyAuth": []}], "produces": ["application/json"], "tags": ["作答"], "summary": "作答记录",
                "parameters": [{"type": "integer", "description": "用户ID（仅管理员）", "name": "userId", "in": "query"}, {"type": "integer", "default": 20, "description": "数量", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"ApiKeyAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["作答"], "summary": "提交作答",
                "parameters": [{"description": "作答内容", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.RecordAnswerInput"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/answers/{questionId}": {
            "get": {"security": [{"ApiKeyAuth": []}], "produces": ["application/json"], "tags": ["作答"], "summary": "某题最近一次作答",
                "parameters": [{"type": "integer", "description": "题目ID", "name": "questionId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/progress/lessons": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["进度"], "summary": "课程进度列表", "responses": {"200": {"description": "OK"}}}},
        "/progress/lessons/{id}": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["进度"], "summary": "单个课程进度", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/progress/lessons/{id}/recompute": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["进度"], "summary": "重算课程进度", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/progress/sections": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["进度"], "summary": "小节进度列表", "responses": {"200": {"description": "OK"}}}},
        "/progress/sections/{id}": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["进度"], "summary": "单个小节进度", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/progress/units": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["进度"], "summary": "单元进度列表", "responses": {"200": {"description": "OK"}}}},
        "/progress/units/{id}": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["进度"], "summary": "单个单元进度", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/xp/log": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["经验"], "summary": "经验流水", "responses": {"200": {"description": "OK"}}}},
        "/xp/stats": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["经验"], "summary": "经验与等级", "responses": {"200": {"description": "OK"}}}},
        "/xp/leaderboard": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["经验"], "summary": "经验排行榜", "responses": {"200": {"description": "OK"}}}},
        "/enrollments": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["报名"], "summary": "报名列表", "responses": {"200": {"description": "OK"}}}},
        "/enrollments/{lessonId}": {
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["报名"], "summary": "报名课程", "parameters": [{"type": "integer", "name": "lessonId", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}},
            "patch": {"security": [{"ApiKeyAuth": []}], "tags": ["报名"], "summary": "设置报名是否有效", "parameters": [{"type": "integer", "name": "lessonId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"ApiKeyAuth": []}], "tags": ["报名"], "summary": "取消报名", "parameters": [{"type": "integer", "name": "lessonId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/dashboard": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["仪表盘"], "summary": "学员仪表盘", "responses": {"200": {"description": "OK"}}}},
        "/admin/dashboard": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["管理"], "summary": "管理员仪表盘", "responses": {"200": {"description": "OK"}}}},
        "/admin/dashboard/questions/hardest": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["管理"], "summary": "最难题目", "parameters": [{"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/admin/dashboard/lessons/popular": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["管理"], "summary": "关注最多的课程", "responses": {"200": {"description": "OK"}}}},
        "/admin/dashboard/units/popular": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["管理"], "summary": "关注最多的单元", "responses": {"200": {"description": "OK"}}}},
        "/admin/dashboard/weekly": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["管理"], "summary": "最近 7 天作答量", "parameters": [{"type": "string", "name": "end", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/admin/dashboard/languages/{id}": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["管理"], "summary": "语言详情", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/admin/analytics/questions/{id}": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["管理"], "summary": "单题统计", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/admin/analytics/questions/{id}/recompute": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["管理"], "summary": "由作答流水重算单题统计", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/admin/analytics/lessons/{id}": {"get": {"security": [{"ApiKeyAuth": []}], "tags": ["管理"], "summary": "课程表现", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/admin/analytics/lessons/{id}/recompute": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["管理"], "summary": "重算课程表现", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/admin/xp/grant": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["管理"], "summary": "手动发放经验", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controller.GrantXpRequest"}}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}},
        "/admin/content/refresh-counts": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["内容"], "summary": "刷新全部计数缓存", "responses": {"200": {"description": "OK"}}}},
        "/admin/content/lessons/{id}/refresh-count": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["内容"], "summary": "刷新课程题目数", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/admin/content/sections/{id}/refresh-count": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["内容"], "summary": "刷新小节课程数", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/admin/content/units/{id}/refresh-count": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["内容"], "summary": "刷新单元小节数", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/admin/content/lessons/{id}": {"delete": {"security": [{"ApiKeyAuth": []}], "tags": ["内容"], "summary": "删除课程", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/admin/content/sections/{id}": {"delete": {"security": [{"ApiKeyAuth": []}], "tags": ["内容"], "summary": "删除小节", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/admin/content/units/{id}": {"delete": {"security": [{"ApiKeyAuth": []}], "tags": ["内容"], "summary": "删除单元", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/admin/content/questions/{id}": {"delete": {"security": [{"ApiKeyAuth": []}], "tags": ["内容"], "summary": "删除题目", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/admin/repair/users/{id}": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["修复"], "summary": "修复用户派生数据", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/admin/repair/lessons/{id}": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["修复"], "summary": "修复课程派生数据", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/admin/repair/questions/{id}": {"post": {"security": [{"ApiKeyAuth": []}], "tags": ["修复"], "summary": "修复单题统计", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "service.RecordAnswerInput": {
            "type": "object",
            "required": ["answer", "questionId"],
            "properties": {
                "answer": {"type": "object"},
                "elapsedMs": {"type": "integer"},
                "questionId": {"type": "integer"}
            }
        },
        "controller.GrantXpRequest": {
            "type": "object",
            "required": ["amount", "userId"],
            "properties": {
                "amount": {"type": "integer"},
                "userId": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Logicfy 后端 API",
	Description:      "Logicfy 学习进度与积分服务。",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
