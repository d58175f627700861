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

package linkage

import "github.com/yiyuanzhong/flinter-sub000/errors"

const (
	ErrorParamsEmpty errors.CodeError = iota + errors.MinPkgLinkage
	ErrorAlreadyInitialized
	ErrorNotInitialized
	ErrorInvalidSlots
	ErrorInvalidWorkers
	ErrorNilHandler
	ErrorListenFailed
	ErrorAcceptFailed
	ErrorResolveFailed
	ErrorConnectFailed
	ErrorHandshakeFailed
	ErrorInvalidChannel
	ErrorChannelNotFound
	ErrorMaxConnections
	ErrorTicketKeyLength
	ErrorShutdown
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorParamsEmpty)
	errors.RegisterIdFctMessage(ErrorParamsEmpty, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorParamsEmpty:
		return "given parameters is empty"
	case ErrorAlreadyInitialized:
		return "server is already initialized"
	case ErrorNotInitialized:
		return "server is not initialized"
	case ErrorInvalidSlots:
		return "reactor slot count out of range"
	case ErrorInvalidWorkers:
		return "worker count out of range"
	case ErrorNilHandler:
		return "handler or factory is nil"
	case ErrorListenFailed:
		return "unable to open listening socket"
	case ErrorAcceptFailed:
		return "unable to accept incoming connection"
	case ErrorResolveFailed:
		return "unable to resolve hostname"
	case ErrorConnectFailed:
		return "unable to connect to remote host"
	case ErrorHandshakeFailed:
		return "tls handshake failed"
	case ErrorInvalidChannel:
		return "invalid channel identifier"
	case ErrorChannelNotFound:
		return "channel not found"
	case ErrorMaxConnections:
		return "maximum connection count reached"
	case ErrorTicketKeyLength:
		return "tls ticket key has an invalid length"
	case ErrorShutdown:
		return "server is shutting down"
	}

	return ""
}
