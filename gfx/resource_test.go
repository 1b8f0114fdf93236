package gfx_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gfxcore/gfx"
)

func TestResourceStateString(t *testing.T) {
	require.Equal(t, "Common", gfx.ResourceStateCommon.String())
	require.Equal(t, "Pending", gfx.ResourceStatePending.String())
	require.Equal(t, "GenericRead", gfx.ResourceStateGenericRead.String())
	require.Equal(t, "CopyDest", gfx.ResourceStateCopyDest.String())
	require.Equal(t, "RenderTarget|DepthRead", (gfx.ResourceStateRenderTarget | gfx.ResourceStateDepthRead).String())
	require.Equal(t, "Common", gfx.ResourceStatePresent.String())
}

func TestResourceKindDerivation(t *testing.T) {
	require.Equal(t, gfx.ResourceKindBuffer, gfx.ResourceKindForBuffer(gfx.BufferDesc{Heap: gfx.HeapDefault}))
	require.Equal(t, gfx.ResourceKindUploadBuffer, gfx.ResourceKindForBuffer(gfx.BufferDesc{Heap: gfx.HeapUpload}))
	require.Equal(t, gfx.ResourceKindReadbackBuffer, gfx.ResourceKindForBuffer(gfx.BufferDesc{Heap: gfx.HeapReadback}))

	require.Equal(t, gfx.ResourceKindTexture, gfx.ResourceKindForTexture(gfx.TextureDesc{Usage: gfx.TextureUsageShaderResource}))
	require.Equal(t, gfx.ResourceKindRenderTarget, gfx.ResourceKindForTexture(gfx.TextureDesc{Usage: gfx.TextureUsageRenderTarget | gfx.TextureUsageShaderResource}))
	require.Equal(t, gfx.ResourceKindDepthStencil, gfx.ResourceKindForTexture(gfx.TextureDesc{Usage: gfx.TextureUsageDepthStencil | gfx.TextureUsageRenderTarget}))
}

func TestInitialResourceState(t *testing.T) {
	require.Equal(t, gfx.ResourceStateCommon, gfx.InitialResourceState(gfx.ResourceKindBuffer))
	require.Equal(t, gfx.ResourceStateGenericRead, gfx.InitialResourceState(gfx.ResourceKindUploadBuffer))
	require.Equal(t, gfx.ResourceStateCopyDest, gfx.InitialResourceState(gfx.ResourceKindReadbackBuffer))
	require.Equal(t, gfx.ResourceStateCommon, gfx.InitialResourceState(gfx.ResourceKindTexture))
	require.Equal(t, gfx.ResourceStateRenderTarget, gfx.InitialResourceState(gfx.ResourceKindRenderTarget))
	require.Equal(t, gfx.ResourceStateDepthWrite, gfx.InitialResourceState(gfx.ResourceKindDepthStencil))
}

func TestCreateFlagsString(t *testing.T) {
	flags := gfx.CreateExternallySynchronized | gfx.CreateValidateOnFlip
	require.Contains(t, flags.String(), "CreateExternallySynchronized")
	require.Contains(t, flags.String(), "CreateValidateOnFlip")
	require.Equal(t, "CreateValidateOnFlip", gfx.CreateValidateOnFlip.String())
}
