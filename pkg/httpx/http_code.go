package httpx

var (
	Failed = failed(500, "request failed")

	InvalidParam = failed(400, "invalid request parameter")
	NotFound     = failed(404, "resource not found")
	Invalid      = failed(422, "validation failed")

	InternalError = failed(500, "internal error, please contact the administrator")
)

var (
	Success = success(200, "success")
)

func failed(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}

func success(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}
